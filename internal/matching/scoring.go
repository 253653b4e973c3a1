// internal/matching/scoring.go
// Pairwise compatibility scoring and distance math

package matching

import (
	"fmt"
	"math"
)

const (
	scoreBase         = 50
	scoreMax          = 100
	sharedPrefPoints  = 10
	sharedPrefCap     = 30
	sameExperiencePts = 10
	diffExperiencePts = 5
	closeAgePts       = 10
	nearAgePts        = 5
	closeAgeYears     = 3
	nearAgeYears      = 7
	earthRadiusKm     = 6371.0
)

// Score computes the symmetric compatibility of two profiles.
// Every signal is additive over a base of 50 and missing optional
// fields contribute nothing. The result is capped at 100.
func Score(a, b *UserProfile) (int, []string) {
	score := scoreBase
	factors := []string{}

	shared := sharedPreferenceCount(a.PreferenceIDs, b.PreferenceIDs)
	if shared > 0 {
		pts := shared * sharedPrefPoints
		if pts > sharedPrefCap {
			pts = sharedPrefCap
		}
		score += pts
		factors = append(factors, fmt.Sprintf("%d shared workout preferences", shared))
	}

	if a.GymID != nil && b.GymID != nil && *a.GymID == *b.GymID {
		factors = append(factors, "same gym")
	}

	if a.ExperienceLevel != nil && b.ExperienceLevel != nil {
		if *a.ExperienceLevel == *b.ExperienceLevel {
			score += sameExperiencePts
			factors = append(factors, "same experience level")
		} else {
			score += diffExperiencePts
		}
	}

	if a.BirthDate != nil && b.BirthDate != nil {
		ageA, ageB := *a.Age(), *b.Age()
		diff := ageA - ageB
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= closeAgeYears:
			score += closeAgePts
			factors = append(factors, "similar age")
		case diff <= nearAgeYears:
			score += nearAgePts
		}
	}

	if score > scoreMax {
		score = scoreMax
	}
	return score, factors
}

func sharedPreferenceCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	count := 0
	for _, id := range b {
		if _, ok := set[id]; ok {
			count++
		}
	}
	return count
}

// haversineKm returns the great-circle distance between two points in km
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
