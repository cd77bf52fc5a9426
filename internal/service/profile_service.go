package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

type ProfileRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) error
	UpsertByEmail(ctx context.Context, u model.ProfileUpdate, now time.Time) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
}

type EventPublisher interface {
	Publish(e events.Event)
}

// ProfileService handles profile business logic.
type ProfileService struct {
	repo   ProfileRepository
	events EventPublisher
	demo   model.DemoProfile
	log    *zap.Logger
	now    func() time.Time
}

func NewProfileService(repo ProfileRepository, pub EventPublisher, demo model.DemoProfile, log *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		events: pub,
		demo:   demo,
		log:    log,
		now:    time.Now,
	}
}

// FetchOrCreateDemo returns the demo profile, creating it with the default
// values on first access.
func (s *ProfileService) FetchOrCreateDemo(ctx context.Context) (*model.Profile, error) {
	p, err := s.repo.FindByEmail(ctx, s.demo.Email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to fetch demo profile: %w", err)
	}

	now := s.timestamp()
	p = &model.Profile{
		Name:      s.demo.Name,
		Email:     s.demo.Email,
		Bio:       s.demo.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(ctx, p)
	if errors.Is(err, model.ErrDuplicateEmail) {
		// Lost a race with a concurrent first request.
		return s.repo.FindByEmail(ctx, s.demo.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create demo profile: %w", err)
	}

	s.log.Info("default profile created", zap.String("email", p.Email))
	s.events.Publish(events.New(events.TypeProfileCreated, p.Email, p))
	return p, nil
}

// Upsert updates the profile with u.Email or creates it when absent.
func (s *ProfileService) Upsert(ctx context.Context, u model.ProfileUpdate) (*model.Profile, error) {
	if u.Email == "" {
		return nil, model.NewValidationError("email", "Email is required")
	}

	now := s.timestamp()
	p, err := s.repo.UpsertByEmail(ctx, u, now)
	if errors.Is(err, model.ErrDuplicateEmail) {
		// Two upserts raced to insert; the second attempt matches the winner.
		p, err = s.repo.UpsertByEmail(ctx, u, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	s.log.Info("profile updated", zap.String("email", p.Email))

	eventType := events.TypeProfileUpdated
	if p.CreatedAt.Equal(p.UpdatedAt) {
		eventType = events.TypeProfileCreated
	}
	s.events.Publish(events.New(eventType, p.Email, p))
	return p, nil
}

// ListAll returns every stored profile in no particular order.
func (s *ProfileService) ListAll(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// timestamp is truncated to the millisecond precision MongoDB stores.
func (s *ProfileService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
