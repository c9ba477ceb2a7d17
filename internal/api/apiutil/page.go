package apiutil

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/templates/layouts"
)

// PageData builds the layout chrome shared by every page.
func PageData(cfg *config.Config, user *models.User, title, active string) layouts.PageData {
	data := layouts.PageData{
		Title:  title,
		Active: active,
		User:   user,
		Theme:  models.DefaultTheme(),
	}
	if cfg != nil {
		data.AppName = cfg.App.Name
		data.Theme = cfg.Theme
		data.AssetBaseURL = cfg.Backend.AssetBaseURL
	}
	return data
}

// FieldMessages turns validation failures into the per-field map the forms render.
func FieldMessages(errs []FieldError, labels map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := out[fe.Field]; seen {
			continue
		}
		label := labels[fe.Field]
		if label == "" {
			label = fe.Field
		}
		out[fe.Field] = label + " " + fe.Reason
	}
	return out
}

// CurrentUser loads the profile shown in the page chrome. Only
// backend.ErrUnauthorized is returned; other failures render the page with
// the default sidebar.
func CurrentUser(ctx context.Context, c *backend.Client, token string) (*models.User, error) {
	user, err := c.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, err
		}
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to load profile for page chrome")
		return nil, nil
	}
	return &user, nil
}
