// internal/invites/service.go
// Workout invite lifecycle

package invites

import (
	"context"
	"fmt"
	"log"
)

// EventSink delivers realtime events to connected users
type EventSink interface {
	EmitToUser(userID, event string, payload interface{})
}

// Notifier sends invite notifications
type Notifier interface {
	NotifyWorkoutInvite(ctx context.Context, userID, title, message, inviteID string)
}

// Store is the persistence surface the service depends on
type Store interface {
	GetAcceptedMatchParties(ctx context.Context, matchID string) (string, string, error)
	Insert(ctx context.Context, inv *Invite) error
	GetByID(ctx context.Context, inviteID string) (*Invite, error)
	ListForUser(ctx context.Context, userID string, status *string) ([]*Invite, error)
	UpdateStatus(ctx context.Context, inviteID, fromStatus, toStatus string) error
	IncrementCompletedWorkouts(ctx context.Context, userIDs ...string) error
	UserName(ctx context.Context, userID string) (string, error)
}

// Service implements the workout invite state machine
type Service struct {
	repo     Store
	events   EventSink
	notifier Notifier
}

// NewService creates an invite service. events and notifier may be nil.
func NewService(repo Store, events EventSink, notifier Notifier) *Service {
	return &Service{repo: repo, events: events, notifier: notifier}
}

// Create proposes a workout to the other party of an accepted match
func (s *Service) Create(ctx context.Context, matchID, inviterID string, req *CreateInviteRequest) (*Invite, error) {
	userA, userB, err := s.repo.GetAcceptedMatchParties(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if inviterID != userA && inviterID != userB {
		return nil, ErrNotParticipant
	}
	inviteeID := userA
	if inviterID == userA {
		inviteeID = userB
	}

	inv := &Invite{
		MatchID:     matchID,
		InviterID:   inviterID,
		InviteeID:   inviteeID,
		WorkoutType: req.WorkoutType,
		Date:        req.Date,
		Time:        req.Time,
		GymID:       req.GymID,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Notes:       req.Notes,
	}
	if err := s.repo.Insert(ctx, inv); err != nil {
		return nil, err
	}

	s.emit(ctx, inviteeID, "invite:new", inv)
	s.notify(ctx, inviteeID, inviterID, "Workout invite",
		"%s invited you to a workout", inv.ID)
	return inv, nil
}

// Accept lets the invitee accept a pending invite
func (s *Service) Accept(ctx context.Context, inviteID, actingUserID string) (*Invite, error) {
	return s.respond(ctx, inviteID, actingUserID, StatusAccepted)
}

// Reject lets the invitee reject a pending invite
func (s *Service) Reject(ctx context.Context, inviteID, actingUserID string) (*Invite, error) {
	return s.respond(ctx, inviteID, actingUserID, StatusRejected)
}

func (s *Service) respond(ctx context.Context, inviteID, actingUserID, toStatus string) (*Invite, error) {
	inv, err := s.repo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != actingUserID {
		if inv.InviterID == actingUserID {
			return nil, ErrWrongActor
		}
		return nil, ErrNotParticipant
	}
	if inv.Status != StatusPending {
		return nil, ErrInvalidState
	}

	if err := s.repo.UpdateStatus(ctx, inviteID, StatusPending, toStatus); err != nil {
		return nil, err
	}
	inv.Status = toStatus

	s.emit(ctx, inv.InviterID, "invite:update", inv)
	if toStatus == StatusAccepted {
		s.notify(ctx, inv.InviterID, actingUserID, "Invite accepted",
			"%s accepted your workout invite", inv.ID)
	}
	return inv, nil
}

// Cancel lets the inviter withdraw a pending invite
func (s *Service) Cancel(ctx context.Context, inviteID, actingUserID string) (*Invite, error) {
	inv, err := s.repo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.InviterID != actingUserID {
		if inv.InviteeID == actingUserID {
			return nil, ErrWrongActor
		}
		return nil, ErrNotParticipant
	}
	if inv.Status != StatusPending {
		return nil, ErrInvalidState
	}

	if err := s.repo.UpdateStatus(ctx, inviteID, StatusPending, StatusCanceled); err != nil {
		return nil, err
	}
	inv.Status = StatusCanceled

	s.emit(ctx, inv.InviteeID, "invite:update", inv)
	return inv, nil
}

// Complete marks an accepted invite as done. Either party may complete it;
// both users' completed workout counters are bumped.
func (s *Service) Complete(ctx context.Context, inviteID, actingUserID string) (*Invite, error) {
	inv, err := s.repo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.InviterID != actingUserID && inv.InviteeID != actingUserID {
		return nil, ErrNotParticipant
	}
	if inv.Status != StatusAccepted {
		return nil, ErrInvalidState
	}

	if err := s.repo.UpdateStatus(ctx, inviteID, StatusAccepted, StatusCompleted); err != nil {
		return nil, err
	}
	inv.Status = StatusCompleted

	if err := s.repo.IncrementCompletedWorkouts(ctx, inv.InviterID, inv.InviteeID); err != nil {
		log.Printf("invites: failed to bump completed workouts for %s: %v", inviteID, err)
	}

	other := inv.InviterID
	if actingUserID == inv.InviterID {
		other = inv.InviteeID
	}
	s.emit(ctx, other, "invite:update", inv)
	return inv, nil
}

// List returns the user's invites, optionally filtered by status
func (s *Service) List(ctx context.Context, userID string, status *string) ([]*Invite, error) {
	return s.repo.ListForUser(ctx, userID, status)
}

func (s *Service) emit(_ context.Context, userID, event string, inv *Invite) {
	if s.events != nil {
		s.events.EmitToUser(userID, event, inv)
	}
}

func (s *Service) notify(ctx context.Context, recipientID, actorID, title, messageFormat, inviteID string) {
	if s.notifier == nil {
		return
	}
	name, err := s.repo.UserName(ctx, actorID)
	if err != nil {
		log.Printf("invites: failed to resolve user name: %v", err)
		name = "Your match"
	}
	s.notifier.NotifyWorkoutInvite(ctx, recipientID, title, fmt.Sprintf(messageFormat, name), inviteID)
}
