package client

import (
	"context"
	"net/http"

	"github.com/claude/fitplan/internal/models"
)

// GetProfile fetches the caller's fitness profile.
func (c *Client) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/profile/me/", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves the caller's fitness profile.
func (c *Client) UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	var saved models.UserProfile
	if err := c.do(ctx, http.MethodPut, "/api/profile/me/", nil, p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetTrainerProfile fetches the caller's trainer profile.
func (c *Client) GetTrainerProfile(ctx context.Context) (*models.TrainerProfile, error) {
	var p models.TrainerProfile
	if err := c.do(ctx, http.MethodGet, "/api/trainer/me/", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateTrainerProfile saves the caller's trainer profile.
func (c *Client) UpdateTrainerProfile(ctx context.Context, p models.TrainerProfile) (*models.TrainerProfile, error) {
	var saved models.TrainerProfile
	if err := c.do(ctx, http.MethodPut, "/api/trainer/me/", nil, p, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
