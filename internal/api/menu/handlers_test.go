package menu

import (
	"bytes"
	"encoding/json"
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

const menuTestConfig = "app:\n  name: Warung Wareg\nbackend:\n  asset_base_url: http://assets.test\n"

func setupMenuTest(t *testing.T) *testutil.FakeBackend {
	t.Helper()
	return setupMenuTestWithConfig(t, menuTestConfig)
}

func setupMenuTestWithConfig(t *testing.T, yaml string) *testutil.FakeBackend {
	t.Helper()

	fake := testutil.NewFakeBackend(t)
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	prevClient, prevConfig := client, appConfig
	t.Cleanup(func() {
		client, appConfig = prevClient, prevConfig
	})
	InitHandlers(backend.NewClient(fake.BaseURL(), 2*time.Second, nil), cfg)

	fake.JSON(http.MethodGet, "/user/profile", http.StatusOK, map[string]any{"user": map[string]string{"email": "owner@warung.id", "role": "ADMIN"}})
	return fake
}

func sampleMenu() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Nasi Goreng", "description": "Pedas", "price": 15000, "category": "FOOD", "picture": "/uploads/nasi.png"},
		{"id": 2, "name": "Es Teh", "description": "Manis", "price": "5000", "category": "DRINK"},
	}
}

func withToken(req *http.Request) *http.Request {
	return req.WithContext(session.WithToken(req.Context(), "tok"))
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return withToken(req)
}

func TestHandleMenuPageFiltersByName(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodGet, "/menu/get-menu", http.StatusOK, sampleMenu())

	rec := httptest.NewRecorder()
	HandleMenuPage(rec, withToken(httptest.NewRequest(http.MethodGet, "/menu?q=NASI&by=name", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Nasi Goreng") || strings.Contains(body, "Es Teh") {
		t.Fatalf("expected only matching items, got %s", body)
	}
	if !strings.Contains(body, "Rp15.000,00") {
		t.Fatalf("expected formatted price")
	}
	if !strings.Contains(body, `src="http://assets.test/uploads/nasi.png"`) {
		t.Fatalf("expected asset URL for picture")
	}
	if !strings.Contains(body, "owner@warung.id") {
		t.Fatalf("expected full layout with profile")
	}
}

func TestHandleMenuPageHTMXSearchReturnsTable(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodGet, "/menu/get-menu", http.StatusOK, sampleMenu())

	req := withToken(httptest.NewRequest(http.MethodGet, "/menu?q=drink&by=category", nil))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleMenuPage(rec, req)

	body := rec.Body.String()
	if !strings.HasPrefix(body, `<div id="menu-table"`) {
		t.Fatalf("expected table partial, got %s", body)
	}
	if !strings.Contains(body, "Es Teh") || strings.Contains(body, "Nasi Goreng") {
		t.Fatalf("expected category filter, got %s", body)
	}
	if len(fake.CallsTo(http.MethodGet, "/user/profile")) != 0 {
		t.Fatalf("partial render should not fetch the profile")
	}
}

func TestHandleMenuPageFetchFailure(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodGet, "/menu/get-menu", http.StatusInternalServerError, map[string]string{"message": "down"})

	req := withToken(httptest.NewRequest(http.MethodGet, "/menu", nil))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleMenuPage(rec, req)

	if !strings.Contains(rec.Body.String(), msgListFailed) {
		t.Fatalf("expected list failure message, got %s", rec.Body.String())
	}
}

func TestHandleMenuPageExpiredSessionRedirects(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodGet, "/user/profile", http.StatusUnauthorized, map[string]string{"message": "expired"})
	fake.JSON(http.MethodGet, "/menu/get-menu", http.StatusOK, sampleMenu())

	rec := httptest.NewRecorder()
	HandleMenuPage(rec, withToken(httptest.NewRequest(http.MethodGet, "/menu", nil)))

	if rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d", rec.Code)
	}
}

func TestHandleCreateMenuValidation(t *testing.T) {
	fake := setupMenuTest(t)

	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, multipartRequest(t, "/menu/new", map[string]string{
		"name":        "Kerupuk",
		"description": "",
		"price":       "50",
		"category":    "",
	}, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for htmx re-render, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Description is required", "Price must be at least 100", "Category is required"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %s", want, body)
		}
	}
	if !strings.Contains(body, `value="Kerupuk"`) {
		t.Fatalf("expected typed name to be kept")
	}
	if len(fake.CallsTo(http.MethodPost, "/menu/add-menu")) != 0 {
		t.Fatalf("invalid form must not reach the backend")
	}
}

func TestHandleCreateMenuRejectsNonImagePicture(t *testing.T) {
	fake := setupMenuTest(t)

	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, multipartRequest(t, "/menu/new", map[string]string{
		"name": "Sate", "description": "Ayam", "price": "20000", "category": "FOOD",
	}, &formFile{field: "picture", filename: "menu.txt", contentType: "text/plain", data: []byte("hello")}))

	if !strings.Contains(rec.Body.String(), "Picture has an unsupported file type") {
		t.Fatalf("expected picture error, got %s", rec.Body.String())
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("no backend calls expected")
	}
}

func TestHandleCreateMenuOversizedFormUsesConfiguredLimit(t *testing.T) {
	fake := setupMenuTestWithConfig(t, menuTestConfig+"  upload_limit_bytes: 1024\n")

	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, multipartRequest(t, "/menu/new", map[string]string{
		"name": "Sate", "description": "Ayam", "price": "20000", "category": "FOOD",
	}, &formFile{field: "picture", filename: "sate.png", contentType: "image/png", data: bytes.Repeat([]byte("x"), 2<<20)}))

	if !strings.Contains(rec.Body.String(), "Picture must be 1 KB or smaller") {
		t.Fatalf("expected configured limit in message, got %s", rec.Body.String())
	}
	if len(fake.CallsTo(http.MethodPost, "/menu/add-menu")) != 0 {
		t.Fatalf("oversized form must not reach the backend")
	}
}

func TestHandleCreateMenuMalformedForm(t *testing.T) {
	fake := setupMenuTest(t)

	req := withToken(httptest.NewRequest(http.MethodPost, "/menu/new", strings.NewReader("garbage")))
	req.Header.Set("Content-Type", "multipart/form-data")
	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The form could not be read") || strings.Contains(body, "MB or smaller") {
		t.Fatalf("expected generic form error, got %s", body)
	}
	if len(fake.CallsTo(http.MethodPost, "/menu/add-menu")) != 0 {
		t.Fatalf("malformed form must not reach the backend")
	}
}

func TestHandleCreateMenuSuccess(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodPost, "/menu/add-menu", http.StatusCreated, map[string]string{"message": "ok"})

	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, multipartRequest(t, "/menu/new", map[string]string{
		"name": "Sate", "description": "Ayam", "price": "20000", "category": "food",
	}, &formFile{field: "picture", filename: "sate.png", contentType: "image/png", data: []byte("\x89PNG")}))

	body := rec.Body.String()
	if !strings.Contains(body, msgAddSuccess) {
		t.Fatalf("expected success message, got %s", body)
	}
	if !strings.Contains(body, `hx-get="/menu" hx-trigger="load delay:2s"`) {
		t.Fatalf("expected delayed redirect to menu")
	}

	calls := fake.CallsTo(http.MethodPost, "/menu/add-menu")
	if len(calls) != 1 {
		t.Fatalf("expected one add-menu call, got %d", len(calls))
	}
	call := calls[0]
	if call.Authorization != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", call.Authorization)
	}
	_, params, err := mime.ParseMediaType(call.ContentType)
	if err != nil {
		t.Fatalf("content type: %v", err)
	}
	form, err := multipart.NewReader(bytes.NewReader(call.Body), params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read forwarded form: %v", err)
	}
	if form.Value["category"][0] != "FOOD" || form.Value["price"][0] != "20000" {
		t.Fatalf("unexpected forwarded values %v", form.Value)
	}
	if len(form.File["picture"]) != 1 || form.File["picture"][0].Filename != "sate.png" {
		t.Fatalf("expected forwarded picture")
	}
}

func TestHandleCreateMenuAPIError(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodPost, "/menu/add-menu", http.StatusBadRequest, map[string]string{"error": "Menu sudah ada"})

	rec := httptest.NewRecorder()
	HandleCreateMenu(rec, multipartRequest(t, "/menu/new", map[string]string{
		"name": "Sate", "description": "Ayam", "price": "20000", "category": "FOOD",
	}, nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Menu sudah ada") {
		t.Fatalf("expected backend message, got %s", body)
	}
	if strings.Contains(body, msgAddSuccess) {
		t.Fatalf("unexpected success message")
	}
}

func TestHandleEditMenuPagePrefills(t *testing.T) {
	fake := setupMenuTest(t)
	fake.Handle(http.MethodGet, "/menu/get-menu", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "7" {
			testutil.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"id": 7, "name": "Soto", "description": "Kuah", "price": 18000, "category": "FOOD"})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /menu/{id}/edit", HandleEditMenuPage)

	req := withToken(httptest.NewRequest(http.MethodGet, "/menu/7/edit", nil))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `value="Soto"`) || !strings.Contains(body, `value="18000"`) {
		t.Fatalf("expected prefilled form, got %s", body)
	}
	if !strings.Contains(body, `action="/menu/7/edit"`) {
		t.Fatalf("expected edit action")
	}

	req = withToken(httptest.NewRequest(http.MethodGet, "/menu/8/edit", nil))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgFetchFailed) {
		t.Fatalf("expected 404 with fetch message, got %d", rec.Code)
	}
}

func TestHandleUpdateMenuSendsJSONPatch(t *testing.T) {
	fake := setupMenuTest(t)
	fake.JSON(http.MethodPatch, "/menu/patch-menu/7", http.StatusOK, map[string]string{"message": "ok"})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /menu/{id}/edit", HandleUpdateMenu)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/menu/7/edit", map[string]string{
		"name": "Soto Betawi", "description": "Santan", "price": "21000.50", "category": "FOOD",
	}, nil))

	if !strings.Contains(rec.Body.String(), msgUpdateOK) {
		t.Fatalf("expected update success, got %s", rec.Body.String())
	}
	calls := fake.CallsTo(http.MethodPatch, "/menu/patch-menu/7")
	if len(calls) != 1 {
		t.Fatalf("expected one patch call, got %d", len(calls))
	}
	var payload map[string]any
	if err := json.Unmarshal(calls[0].Body, &payload); err != nil {
		t.Fatalf("decode patch body: %v", err)
	}
	if price, ok := payload["price"].(float64); !ok || price != 21000.5 {
		t.Fatalf("expected numeric price, got %#v", payload["price"])
	}
	if payload["name"] != "Soto Betawi" {
		t.Fatalf("unexpected name %v", payload["name"])
	}
}

func TestHandleUpdateMenuInvalidID(t *testing.T) {
	setupMenuTest(t)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /menu/{id}/edit", HandleUpdateMenu)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "/menu/abc/edit", map[string]string{"name": "x"}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
