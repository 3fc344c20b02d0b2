package services

import (
	"context"
	"fmt"

	"budget/internal/core"
	"budget/internal/storage"
)

type ProfileService struct {
	store storage.ProfileStore
}

func NewProfileService(store storage.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

func (s *ProfileService) Get(ctx context.Context, ownerID string) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx, ownerID)
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) Save(ctx context.Context, p core.Profile) (core.Profile, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	saved, err := s.store.UpsertProfile(ctx, p)
	if err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}
