package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/member-registry/internal/domain"
	"github.com/spec-kit/member-registry/internal/events"
	"github.com/spec-kit/member-registry/internal/repository"
	"github.com/spec-kit/member-registry/pkg/util"
)

// MemberService serves directory reads and lifecycle changes.
type MemberService struct {
	members    repository.MemberRepository
	cache      *repository.MemberCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewMemberService builds the service.
func NewMemberService(members repository.MemberRepository, cache *repository.MemberCache, dispatcher events.Dispatcher, logger *zap.Logger) *MemberService {
	return &MemberService{members: members, cache: cache, dispatcher: dispatcher, logger: logger}
}

// List returns all non-deleted members ordered by name.
func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	if members, ok := s.cache.GetList(ctx); ok {
		return members, nil
	}

	members, err := s.members.ListOrderedByName(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, members)
	return members, nil
}

// GetByID looks up a single visible member. Deleted and inactive members read
// as not found.
func (s *MemberService) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if member, ok := s.cache.GetByID(ctx, id); ok {
		return member, nil
	}

	member, err := s.fetchVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, member)
	return member, nil
}

// Delete soft-deletes a visible member.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	member, err := s.fetchVisible(ctx, id)
	if err != nil {
		return err
	}

	member.Deleted = true
	if err := s.members.Update(ctx, member); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, member.ID)

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMemberDeleted,
		SubjectID: member.ID,
		Timestamp: time.Now(),
		Payload:   events.MemberDeletedPayload{Email: member.Email},
	})
	return nil
}

// ChangeStatus flips a member between active and inactive. Deleted members
// cannot change status.
func (s *MemberService) ChangeStatus(ctx context.Context, id string, status domain.MemberStatus) (*domain.Member, error) {
	member, err := s.fetchExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.Deleted {
		return nil, util.NewIllegalOperation("Can not perform the action on this member.")
	}

	oldStatus := member.Status()
	member.SetStatus(status)
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, member.ID)

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMemberStatusChanged,
		SubjectID: member.ID,
		Timestamp: time.Now(),
		Payload:   events.MemberStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return member, nil
}

func (s *MemberService) fetchVisible(ctx context.Context, id string) (*domain.Member, error) {
	member, err := s.fetchExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !member.Visible() {
		return nil, util.NewNotFound("Member")
	}
	return member, nil
}

func (s *MemberService) fetchExisting(ctx context.Context, id string) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("Member")
		}
		return nil, err
	}
	return member, nil
}

func (s *MemberService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
