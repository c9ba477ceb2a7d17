// internal/api/settings/handlers.go
package settings

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/api/apiutil"
	"github.com/codr1/WarungWareg/internal/api/htmx"
	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/session"
	settingstempl "github.com/codr1/WarungWareg/internal/templates/components/settings"
	"github.com/codr1/WarungWareg/internal/templates/layouts"
)

const (
	msgUpdated       = "Profile updated successfully!"
	msgUpdateFailed  = "Failed to update profile"
	msgUpdateError   = "Error updating profile."
	msgProfileFailed = "Failed to load profile"
)

var (
	client    *backend.Client
	appConfig *config.Config
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *backend.Client, cfg *config.Config) {
	client = c
	appConfig = cfg
}

// HandleSettingsPage renders GET /settings prefilled from the profile.
func HandleSettingsPage(w http.ResponseWriter, r *http.Request) {
	token, _ := session.TokenFromContext(r.Context())
	user, err := client.Profile(r.Context(), token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			htmx.Redirect(w, r, "/login")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to load profile")
		render(w, r, settingstempl.SettingsFormData{Error: msgProfileFailed}, nil, http.StatusBadGateway)
		return
	}
	render(w, r, formData(user), &user, http.StatusOK)
}

// HandleUpdateSettings handles POST /settings.
func HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if err := apiutil.ParseMultipart(w, r, appConfig.Backend.UploadLimit); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse settings form")
		msg, status := apiutil.FormParseError(err, "Profile picture", appConfig.Backend.UploadLimit)
		render(w, r, settingstempl.SettingsFormData{Error: msg}, nil, status)
		return
	}

	data := settingstempl.SettingsFormData{
		Email:      strings.TrimSpace(r.FormValue("email")),
		PreviewURL: strings.TrimSpace(r.FormValue("preview_url")),
	}

	var fieldErrs []apiutil.FieldError
	if data.Email == "" {
		fieldErrs = append(fieldErrs, apiutil.FieldError{Field: "email", Reason: "is required"})
	}
	picture, err := apiutil.FormUpload(r, "profilePic", appConfig.Backend.UploadLimit, "image/png", "image/jpeg")
	var fieldErr apiutil.FieldError
	if errors.As(err, &fieldErr) {
		fieldErrs = append(fieldErrs, fieldErr)
	}
	if len(fieldErrs) > 0 {
		data.FieldErrors = apiutil.FieldMessages(fieldErrs, map[string]string{
			"email":      "Email",
			"profilePic": "Profile picture",
		})
		render(w, r, data, nil, http.StatusUnprocessableEntity)
		return
	}

	token, _ := session.TokenFromContext(r.Context())
	user, err := client.UpdateUser(r.Context(), token, data.Email, picture)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to update profile")
		if errors.Is(err, backend.ErrTransport) {
			data.Error = msgUpdateError
		} else {
			data.Error = backend.MessageFor(err, msgUpdateFailed)
		}
		render(w, r, data, nil, http.StatusBadGateway)
		return
	}

	logger.Info().Msg("Profile updated")
	data = formData(user)
	data.Success = msgUpdated
	render(w, r, data, &user, http.StatusOK)
}

func formData(user models.User) settingstempl.SettingsFormData {
	return settingstempl.SettingsFormData{
		Email:      user.Email,
		Role:       user.Role,
		PreviewURL: layouts.AssetURL(appConfig.Backend.AssetBaseURL, user.ProfilePic),
	}
}

// render sends just the form to HTMX. Full pages load the profile for the
// sidebar when the caller does not already have it.
func render(w http.ResponseWriter, r *http.Request, data settingstempl.SettingsFormData, user *models.User, status int) {
	form := settingstempl.SettingsForm(data)
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponentStatus(r.Context(), w, htmx.FormStatus(r, status), form, nil,
			"Failed to render settings form", "Failed to render page")
		return
	}

	if user == nil {
		token, _ := session.TokenFromContext(r.Context())
		current, err := apiutil.CurrentUser(r.Context(), client, token)
		if err != nil {
			htmx.Redirect(w, r, "/login")
			return
		}
		user = current
	}
	page := apiutil.PageData(appConfig, user, "Settings", "settings")
	apiutil.RenderHTMLComponentStatus(r.Context(), w, status, layouts.Base(form, page), nil,
		"Failed to render settings page", "Failed to render page")
}
