package matching

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func birthDate(age int) *time.Time {
	t := time.Now().AddDate(-age, 0, -1)
	return &t
}

func profileWith(id string, mutate func(*UserProfile)) *UserProfile {
	p := &UserProfile{ID: id, Name: "User " + id}
	if mutate != nil {
		mutate(p)
	}
	return p
}

func TestScoreEmptyProfilesIsBase(t *testing.T) {
	a := profileWith("a", nil)
	b := profileWith("b", nil)

	score, factors := Score(a, b)

	assert.Equal(t, 50, score)
	assert.Empty(t, factors)
}

func TestScoreBounds(t *testing.T) {
	a := profileWith("a", func(p *UserProfile) {
		p.PreferenceIDs = []string{"p1", "p2", "p3", "p4", "p5"}
		p.ExperienceLevel = strPtr("advanced")
		p.BirthDate = birthDate(28)
		p.GymID = strPtr("gym-1")
	})
	b := profileWith("b", func(p *UserProfile) {
		p.PreferenceIDs = []string{"p1", "p2", "p3", "p4", "p5"}
		p.ExperienceLevel = strPtr("advanced")
		p.BirthDate = birthDate(29)
		p.GymID = strPtr("gym-1")
	})

	score, _ := Score(a, b)

	// 50 + 30 (pref cap) + 10 (experience) + 10 (age) = 100
	assert.Equal(t, 100, score)
	assert.LessOrEqual(t, score, 100)
}

func TestScoreSymmetry(t *testing.T) {
	cases := []struct {
		name string
		a, b *UserProfile
	}{
		{
			name: "full profiles",
			a: profileWith("a", func(p *UserProfile) {
				p.PreferenceIDs = []string{"p1", "p2"}
				p.ExperienceLevel = strPtr("beginner")
				p.BirthDate = birthDate(22)
			}),
			b: profileWith("b", func(p *UserProfile) {
				p.PreferenceIDs = []string{"p2", "p3"}
				p.ExperienceLevel = strPtr("advanced")
				p.BirthDate = birthDate(30)
			}),
		},
		{
			name: "partial profiles",
			a: profileWith("a", func(p *UserProfile) {
				p.ExperienceLevel = strPtr("intermediate")
			}),
			b: profileWith("b", func(p *UserProfile) {
				p.BirthDate = birthDate(40)
			}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ab, _ := Score(tc.a, tc.b)
			ba, _ := Score(tc.b, tc.a)
			assert.Equal(t, ab, ba)
		})
	}
}

func TestScoreSharedPreferenceCap(t *testing.T) {
	makePrefs := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("pref-%d", i)
		}
		return out
	}

	for _, n := range []int{1, 2, 3, 4, 6} {
		a := profileWith("a", func(p *UserProfile) { p.PreferenceIDs = makePrefs(n) })
		b := profileWith("b", func(p *UserProfile) { p.PreferenceIDs = makePrefs(n) })

		score, factors := Score(a, b)

		expected := 50 + n*10
		if expected > 80 {
			expected = 80
		}
		assert.Equal(t, expected, score, "n=%d", n)
		assert.Contains(t, factors, fmt.Sprintf("%d shared workout preferences", n))
	}
}

func TestScoreExperienceLevels(t *testing.T) {
	same, _ := Score(
		profileWith("a", func(p *UserProfile) { p.ExperienceLevel = strPtr("intermediate") }),
		profileWith("b", func(p *UserProfile) { p.ExperienceLevel = strPtr("intermediate") }))
	diff, _ := Score(
		profileWith("a", func(p *UserProfile) { p.ExperienceLevel = strPtr("beginner") }),
		profileWith("b", func(p *UserProfile) { p.ExperienceLevel = strPtr("advanced") }))
	oneSet, _ := Score(
		profileWith("a", func(p *UserProfile) { p.ExperienceLevel = strPtr("beginner") }),
		profileWith("b", nil))

	assert.Equal(t, 60, same)
	assert.Equal(t, 55, diff)
	assert.Equal(t, 50, oneSet)
}

func TestScoreAgeBands(t *testing.T) {
	score := func(ageA, ageB int) int {
		s, _ := Score(
			profileWith("a", func(p *UserProfile) { p.BirthDate = birthDate(ageA) }),
			profileWith("b", func(p *UserProfile) { p.BirthDate = birthDate(ageB) }))
		return s
	}

	assert.Equal(t, 60, score(25, 25))
	assert.Equal(t, 60, score(25, 28))
	assert.Equal(t, 55, score(25, 30))
	assert.Equal(t, 55, score(25, 32))
	assert.Equal(t, 50, score(25, 40))
}

func TestScoreMissingFieldsAreNeutral(t *testing.T) {
	base, _ := Score(profileWith("a", nil), profileWith("b", nil))

	withAge, _ := Score(
		profileWith("a", func(p *UserProfile) { p.BirthDate = birthDate(25) }),
		profileWith("b", nil))
	withGym, _ := Score(
		profileWith("a", func(p *UserProfile) { p.GymID = strPtr("gym-1") }),
		profileWith("b", nil))

	assert.Equal(t, base, withAge)
	assert.Equal(t, base, withGym)
}

func TestScoreSameGymFactor(t *testing.T) {
	_, factors := Score(
		profileWith("a", func(p *UserProfile) { p.GymID = strPtr("gym-1") }),
		profileWith("b", func(p *UserProfile) { p.GymID = strPtr("gym-1") }))
	assert.Contains(t, factors, "same gym")

	_, factors = Score(
		profileWith("a", func(p *UserProfile) { p.GymID = strPtr("gym-1") }),
		profileWith("b", func(p *UserProfile) { p.GymID = strPtr("gym-2") }))
	assert.NotContains(t, factors, "same gym")
}

func TestHaversineKnownDistance(t *testing.T) {
	// Recife to São Paulo, roughly 2100 km
	d := haversineKm(-8.05, -34.9, -23.55, -46.63)
	assert.InDelta(t, 2100, d, 50)

	// same point
	assert.InDelta(t, 0, haversineKm(10, 10, 10, 10), 0.001)
}
