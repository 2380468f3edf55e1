package service

import (
	"context"
	"time"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/repository"
)

const maxDurationMinutes = 240

type ProfileService struct {
	repo *repository.ProfileRepository
}

type UpdateProfileInput struct {
	FullName    *string            `json:"full_name"`
	Preferences *model.Preferences `json:"preferences"`
}

func NewProfileService(repo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, *apperrors.APIError) {
	profile, err := s.repo.Get(ctx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("profile_not_found", "profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get profile")
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, input UpdateProfileInput) (*model.Profile, *apperrors.APIError) {
	if input.Preferences != nil {
		if apiErr := validatePreferences(*input.Preferences); apiErr != nil {
			return nil, apiErr
		}
	}

	profile, apiErr := s.Get(ctx, userID)
	if apiErr != nil {
		return nil, apiErr
	}
	if input.FullName != nil {
		profile.FullName = input.FullName
	}
	if input.Preferences != nil {
		profile.Preferences = *input.Preferences
	}

	if err := s.repo.Update(ctx, profile, time.Now().UTC()); err != nil {
		return nil, apperrors.Internal("failed to update profile")
	}
	return profile, nil
}

func validatePreferences(p model.Preferences) *apperrors.APIError {
	for _, minutes := range []int{p.WorkMinutes, p.ShortBreakMinutes, p.LongBreakMinutes} {
		if minutes < 1 || minutes > maxDurationMinutes {
			return apperrors.BadRequest("invalid_duration", "durations must be between 1 and 240 minutes")
		}
	}
	if p.LongBreakInterval < 1 {
		return apperrors.BadRequest("invalid_interval", "long_break_interval must be at least 1")
	}
	return nil
}
