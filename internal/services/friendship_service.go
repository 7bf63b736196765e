package services

import (
	"context"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// FriendshipService enforces the relationship state machine between two
// users. Per unordered pair the states are: none -> pending (send),
// pending -> none (cancel by requester, reject by target),
// pending -> accepted (accept by target), accepted -> none (unfriend by
// either side). Conflicting concurrent transitions are serialized by the
// repository; this service holds no state of its own.
type FriendshipService struct {
	relationships repositories.RelationshipRepository
}

// NewFriendshipService creates a new FriendshipService
func NewFriendshipService(relationships repositories.RelationshipRepository) *FriendshipService {
	return &FriendshipService{relationships: relationships}
}

// SendRequest creates a pending request from actor to other. It fails with
// ErrSelfReference when both sides are the same user and with
// ErrDuplicateRequest when any relationship already exists for the pair.
func (s *FriendshipService) SendRequest(ctx context.Context, actor, other string) error {
	if actor == other {
		return apperrors.ErrSelfReference
	}
	if err := s.relationships.CreatePending(ctx, actor, other); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"requester": actor, "target": other}).Info("friend request sent")
	return nil
}

// CancelRequest withdraws a pending request the actor sent to other.
// Only the original requester can cancel; the target calling this sees
// ErrRelationshipNotFound.
func (s *FriendshipService) CancelRequest(ctx context.Context, actor, other string) error {
	return s.relationships.DeletePending(ctx, actor, other)
}

// AcceptRequest accepts a pending request that other sent to actor.
func (s *FriendshipService) AcceptRequest(ctx context.Context, actor, other string) error {
	if err := s.relationships.PromotePending(ctx, other, actor); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"requester": other, "target": actor}).Info("friend request accepted")
	return nil
}

// RejectRequest declines a pending request that other sent to actor.
// Rejection deletes the record; it is not a stored state.
func (s *FriendshipService) RejectRequest(ctx context.Context, actor, other string) error {
	return s.relationships.DeletePending(ctx, other, actor)
}

// Unfriend dissolves an accepted relationship. Either side may call it.
func (s *FriendshipService) Unfriend(ctx context.Context, actor, other string) error {
	if actor == other {
		return apperrors.ErrRelationshipNotFound
	}
	if err := s.relationships.DeleteAccepted(ctx, actor, other); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"actor": actor, "other": other}).Info("friendship dissolved")
	return nil
}
