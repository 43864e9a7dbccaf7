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

// MemberRegistrationService handles admission of new members into the directory.
type MemberRegistrationService struct {
	members    repository.MemberRepository
	cache      *repository.MemberCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewMemberRegistrationService builds the service.
func NewMemberRegistrationService(members repository.MemberRepository, cache *repository.MemberCache, dispatcher events.Dispatcher, logger *zap.Logger) *MemberRegistrationService {
	return &MemberRegistrationService{members: members, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Register persists a new active member and announces the registration.
// Email addresses are unique across the directory, deleted members included.
func (s *MemberRegistrationService) Register(ctx context.Context, name, email, phoneNumber string) (*domain.Member, error) {
	if _, err := s.members.GetByEmail(ctx, email); err == nil {
		return nil, util.NewConflict("Member with email " + email + " already exists.")
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	member := &domain.Member{
		Name:        name,
		Email:       email,
		PhoneNumber: phoneNumber,
		Active:      true,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, "")

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMemberRegistered,
			SubjectID: member.ID,
			Timestamp: time.Now(),
			Payload:   events.MemberRegisteredPayload{Name: member.Name, Email: member.Email},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish member_registered", zap.Error(err))
		}
	}

	return member, nil
}
