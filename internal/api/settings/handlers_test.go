package settings

import (
	"bytes"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/session"
	"github.com/codr1/WarungWareg/internal/testutil"
)

func setupSettingsTest(t *testing.T) *testutil.FakeBackend {
	t.Helper()

	fake := testutil.NewFakeBackend(t)
	cfg, err := config.Parse([]byte("app:\n  name: Warung Wareg\nbackend:\n  asset_base_url: http://assets.test\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	prevClient, prevConfig := client, appConfig
	t.Cleanup(func() {
		client, appConfig = prevClient, prevConfig
	})
	InitHandlers(backend.NewClient(fake.BaseURL(), 2*time.Second, nil), cfg)
	return fake
}

func settingsRequest(t *testing.T, email string, picture []byte, contentType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("email", email); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if picture != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="profilePic"; filename="me.png"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(picture); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/settings", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req.WithContext(session.WithToken(req.Context(), "tok"))
}

func TestHandleSettingsPagePrefills(t *testing.T) {
	fake := setupSettingsTest(t)
	fake.JSON(http.MethodGet, "/user/profile", http.StatusOK, map[string]any{
		"user": map[string]string{"email": "owner@warung.id", "role": "ADMIN", "profilePic": "/uploads/me.png"},
	})

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	HandleSettingsPage(rec, req.WithContext(session.WithToken(req.Context(), "tok")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="owner@warung.id"`) {
		t.Fatalf("expected email prefilled, got %s", body)
	}
	if !strings.Contains(body, `src="http://assets.test/uploads/me.png"`) {
		t.Fatalf("expected preview from asset base URL")
	}
	if got := len(fake.CallsTo(http.MethodGet, "/user/profile")); got != 1 {
		t.Fatalf("expected a single profile fetch, got %d", got)
	}
}

func TestHandleSettingsPageUnauthorized(t *testing.T) {
	fake := setupSettingsTest(t)
	fake.JSON(http.MethodGet, "/user/profile", http.StatusUnauthorized, map[string]string{"message": "expired"})

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	HandleSettingsPage(rec, req.WithContext(session.WithToken(req.Context(), "tok")))

	if rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}
}

func TestHandleUpdateSettingsSuccess(t *testing.T) {
	fake := setupSettingsTest(t)
	fake.JSON(http.MethodPut, "/user/update-user", http.StatusOK, map[string]any{
		"data": map[string]string{"email": "baru@warung.id", "role": "ADMIN", "profilePic": "/uploads/new.png"},
	})

	rec := httptest.NewRecorder()
	HandleUpdateSettings(rec, settingsRequest(t, "baru@warung.id", []byte("\x89PNG"), "image/png"))

	body := rec.Body.String()
	if !strings.Contains(body, msgUpdated) {
		t.Fatalf("expected success message, got %s", body)
	}
	if !strings.Contains(body, `src="http://assets.test/uploads/new.png"`) {
		t.Fatalf("expected updated preview")
	}

	calls := fake.CallsTo(http.MethodPut, "/user/update-user")
	if len(calls) != 1 {
		t.Fatalf("expected one update call, got %d", len(calls))
	}
	_, params, err := mime.ParseMediaType(calls[0].ContentType)
	if err != nil {
		t.Fatalf("content type: %v", err)
	}
	form, err := multipart.NewReader(bytes.NewReader(calls[0].Body), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read forwarded form: %v", err)
	}
	if form.Value["email"][0] != "baru@warung.id" || len(form.File["profilePic"]) != 1 {
		t.Fatalf("unexpected forwarded form %v", form.Value)
	}
}

func TestHandleUpdateSettingsRejectsGIF(t *testing.T) {
	fake := setupSettingsTest(t)

	rec := httptest.NewRecorder()
	HandleUpdateSettings(rec, settingsRequest(t, "owner@warung.id", []byte("GIF89a"), "image/gif"))

	if !strings.Contains(rec.Body.String(), "Profile picture has an unsupported file type") {
		t.Fatalf("expected file type error, got %s", rec.Body.String())
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("no backend call expected")
	}
}

func TestHandleUpdateSettingsRequiresEmail(t *testing.T) {
	setupSettingsTest(t)

	rec := httptest.NewRecorder()
	HandleUpdateSettings(rec, settingsRequest(t, "  ", nil, ""))

	if !strings.Contains(rec.Body.String(), "Email is required") {
		t.Fatalf("expected email error, got %s", rec.Body.String())
	}
}

func TestHandleUpdateSettingsAPIError(t *testing.T) {
	fake := setupSettingsTest(t)
	fake.JSON(http.MethodPut, "/user/update-user", http.StatusBadRequest, map[string]string{})

	rec := httptest.NewRecorder()
	HandleUpdateSettings(rec, settingsRequest(t, "owner@warung.id", nil, ""))

	if !strings.Contains(rec.Body.String(), msgUpdateFailed) {
		t.Fatalf("expected fallback message, got %s", rec.Body.String())
	}
}
