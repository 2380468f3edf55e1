package remote

import (
	"context"
	"net/http"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type Profiles struct {
	c *Client
}

type ProfileUpdate struct {
	FullName    *string            `json:"full_name,omitempty"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

func (p *Profiles) Get(ctx context.Context) (model.Profile, error) {
	var profile model.Profile
	if err := p.c.do(ctx, "get profile", http.MethodGet, "/rest/v1/profile", nil, nil, &profile, true); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

func (p *Profiles) Update(ctx context.Context, update ProfileUpdate) (model.Profile, error) {
	var profile model.Profile
	if err := p.c.do(ctx, "update profile", http.MethodPatch, "/rest/v1/profile", nil, update, &profile, true); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

func (p *Profiles) Load(ctx context.Context) (model.Preferences, error) {
	profile, err := p.Get(ctx)
	if err != nil {
		return model.Preferences{}, err
	}
	return profile.Preferences, nil
}

// Save stores prefs on the profile and returns what the server kept.
func (p *Profiles) Save(ctx context.Context, prefs model.Preferences) (model.Preferences, error) {
	profile, err := p.Update(ctx, ProfileUpdate{Preferences: &prefs})
	if err != nil {
		return model.Preferences{}, err
	}
	return profile.Preferences, nil
}
