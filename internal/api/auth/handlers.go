// internal/api/auth/handlers.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/api/apiutil"
	"github.com/codr1/WarungWareg/internal/api/htmx"
	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/ratelimit"
	"github.com/codr1/WarungWareg/internal/session"
	authtempl "github.com/codr1/WarungWareg/internal/templates/components/auth"
	"github.com/codr1/WarungWareg/internal/templates/layouts"
)

const (
	msgInvalidCredentials = "Email atau password salah."
	msgMissingToken       = "Login berhasil, tetapi token tidak ditemukan."
	msgLoginUnavailable   = "Server sedang bermasalah. Coba lagi nanti."
	msgRegisterFailed     = "Failed to register. Please try again."
	msgRegisterSuccess    = "Registration successful! Redirecting to login..."
	redirectDelaySeconds  = 2
)

var (
	client    *backend.Client
	tokens    session.TokenStore
	limiter   *ratelimit.Limiter
	appConfig *config.Config
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *backend.Client, store session.TokenStore, l *ratelimit.Limiter, cfg *config.Config) {
	client = c
	tokens = store
	limiter = l
	appConfig = cfg
}

// HandleLoginPage renders GET /login.
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.TokenFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderAuthPage(w, r, authtempl.LoginForm(authtempl.LoginFormData{}), "Login", http.StatusOK, "")
}

// HandleLogin handles POST /login.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	data := authtempl.LoginFormData{Email: email}

	if email == "" || password == "" {
		data.Error = msgInvalidCredentials
		renderAuthPage(w, r, authtempl.LoginForm(data), "Login", http.StatusUnprocessableEntity, "")
		return
	}

	ip := ratelimit.ClientIP(r, trustProxy())
	attempt, decision := limiter.BeginLogin(email, ip)
	if !decision.Allowed {
		logThrottled(r, "login", email, ip, decision)
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds()))
		data.Error = fmt.Sprintf("Terlalu banyak percobaan login. Coba lagi dalam %d menit.", decision.RetryAfterMinutes())
		renderAuthPage(w, r, authtempl.LoginForm(data), "Login", http.StatusTooManyRequests, "")
		return
	}

	token, err := client.Login(r.Context(), email, password)
	outcome := outcomeOf(err)
	if attempt.Finish(outcome) {
		logger.Warn().Str("email", ratelimit.MaskEmail(email)).Str("ip", ip).Msg("Login locked out")
	}
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case outcome == ratelimit.Rejected:
			logger.Info().Err(err).Str("email", ratelimit.MaskEmail(email)).Msg("Login rejected")
			data.Error = msgInvalidCredentials
			status = http.StatusUnauthorized
		case errors.Is(err, backend.ErrMissingToken):
			logger.Warn().Str("email", ratelimit.MaskEmail(email)).Msg("Login response had no token")
			data.Error = msgMissingToken
		default:
			logger.Error().Err(err).Msg("Login request failed")
			data.Error = msgLoginUnavailable
		}
		renderAuthPage(w, r, authtempl.LoginForm(data), "Login", status, "")
		return
	}

	if err := tokens.SetToken(w, r, token); err != nil {
		logger.Error().Err(err).Msg("Failed to store session")
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("email", ratelimit.MaskEmail(email)).Msg("Login succeeded")
	htmx.Redirect(w, r, "/dashboard")
}

// HandleRegisterPage renders GET /register.
func HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderAuthPage(w, r, authtempl.RegisterForm(authtempl.RegisterFormData{}), "Register", http.StatusOK, "")
}

// HandleRegister handles POST /register.
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	uploadLimit := int64(10 << 20)
	if appConfig != nil {
		uploadLimit = appConfig.Backend.UploadLimit
	}
	if err := apiutil.ParseMultipart(w, r, uploadLimit); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse register form")
		msg, status := apiutil.FormParseError(err, "Profile picture", uploadLimit)
		data := authtempl.RegisterFormData{Error: msg}
		renderAuthPage(w, r, authtempl.RegisterForm(data), "Register", status, "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	data := authtempl.RegisterFormData{Email: email}

	var fieldErrs []apiutil.FieldError
	if email == "" {
		fieldErrs = append(fieldErrs, apiutil.FieldError{Field: "email", Reason: "is required"})
	}
	if password == "" {
		fieldErrs = append(fieldErrs, apiutil.FieldError{Field: "password", Reason: "is required"})
	}
	picture, err := apiutil.FormUpload(r, "profilePic", uploadLimit, "image/")
	var fieldErr apiutil.FieldError
	if errors.As(err, &fieldErr) {
		fieldErrs = append(fieldErrs, fieldErr)
	}
	if len(fieldErrs) > 0 {
		data.FieldErrors = apiutil.FieldMessages(fieldErrs, map[string]string{
			"email":      "Email",
			"password":   "Password",
			"profilePic": "Profile picture",
		})
		renderAuthPage(w, r, authtempl.RegisterForm(data), "Register", http.StatusUnprocessableEntity, "")
		return
	}

	ip := ratelimit.ClientIP(r, trustProxy())
	attempt, decision := limiter.BeginRegister(ip)
	if !decision.Allowed {
		logThrottled(r, "register", email, ip, decision)
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfterSeconds()))
		data.Error = fmt.Sprintf("Terlalu banyak pendaftaran. Coba lagi dalam %d menit.", decision.RetryAfterMinutes())
		renderAuthPage(w, r, authtempl.RegisterForm(data), "Register", http.StatusTooManyRequests, "")
		return
	}

	err = client.Register(r.Context(), email, password, picture)
	outcome := outcomeOf(err)
	attempt.Finish(outcome)
	if err != nil {
		logger.Warn().Err(err).Str("email", ratelimit.MaskEmail(email)).Msg("Registration failed")
		data.Error = backend.MessageFor(err, msgRegisterFailed)
		status := http.StatusBadGateway
		if outcome == ratelimit.Rejected {
			status = http.StatusUnprocessableEntity
		}
		renderAuthPage(w, r, authtempl.RegisterForm(data), "Register", status, "")
		return
	}

	logger.Info().Str("email", ratelimit.MaskEmail(email)).Msg("Registration succeeded")
	data = authtempl.RegisterFormData{Success: msgRegisterSuccess, RedirectTo: "/login"}
	renderAuthPage(w, r, authtempl.RegisterForm(data), "Register", http.StatusOK, "/login")
}

// HandleLogout handles POST /logout.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := tokens.ClearToken(w, r); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to clear session")
	}
	htmx.Redirect(w, r, "/login")
}

// renderAuthPage returns just the form to HTMX and the full page otherwise.
func renderAuthPage(w http.ResponseWriter, r *http.Request, form templ.Component, title string, status int, redirectTo string) {
	component := form
	if !htmx.IsRequest(r) {
		page := apiutil.PageData(appConfig, nil, title, "")
		if redirectTo != "" {
			page.RedirectTo = redirectTo
			page.RedirectSeconds = redirectDelaySeconds
		}
		component = layouts.Auth(form, page)
	}
	apiutil.RenderHTMLComponentStatus(r.Context(), w, htmx.FormStatus(r, status), component, nil,
		"Failed to render "+strings.ToLower(title)+" page", "Failed to render page")
}

func trustProxy() bool {
	return appConfig != nil && appConfig.RateLimit.TrustProxy
}

// outcomeOf maps a backend error onto what the limiter should charge for it.
func outcomeOf(err error) ratelimit.Outcome {
	switch {
	case err == nil:
		return ratelimit.Succeeded
	case backend.IsRejection(err):
		return ratelimit.Rejected
	default:
		return ratelimit.Unavailable
	}
}

func logThrottled(r *http.Request, form, email, ip string, decision ratelimit.Decision) {
	log.Ctx(r.Context()).Warn().
		Str("event", "rate_limit_exceeded").
		Str("form", form).
		Str("email", ratelimit.MaskEmail(email)).
		Str("ip", ip).
		Str("reason", decision.Reason).
		Dur("retry_after", decision.RetryAfter).
		Msg("Auth rate limit exceeded")
}
