package apiutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestRenderHTMLComponentSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	ok := RenderHTMLComponent(context.Background(), rec, templ.Raw("<p>hi</p>"), map[string]string{"HX-Trigger": "saved"}, "log", "fail")
	if !ok {
		t.Fatalf("expected render to succeed")
	}
	if rec.Header().Get("HX-Trigger") != "saved" {
		t.Fatalf("expected HX-Trigger header")
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "<p>hi</p>" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRenderHTMLComponentFailure(t *testing.T) {
	failing := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("boom")
	})
	rec := httptest.NewRecorder()
	if RenderHTMLComponent(context.Background(), rec, failing, nil, "log", "Failed to render page") {
		t.Fatalf("expected failure")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "partial") {
		t.Fatalf("partial output leaked into error response")
	}
}

func TestWriteHandlerError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHandlerError(context.Background(), rec, HandlerError{Status: http.StatusBadRequest, Message: "bad id"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "bad id") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	WriteHandlerError(context.Background(), rec, errors.New("hidden"))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "hidden") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestParseDecimalField(t *testing.T) {
	if _, err := ParseDecimalField("  ", "price"); err == nil {
		t.Fatalf("expected required error")
	}
	if _, err := ParseDecimalField("abc", "price"); err == nil {
		t.Fatalf("expected number error")
	}
	value, err := ParseDecimalField("15000.50", "price")
	if err != nil || value.String() != "15000.5" {
		t.Fatalf("unexpected value %s, %v", value, err)
	}
}

func TestParsePositiveInt64Field(t *testing.T) {
	for _, raw := range []string{"", "0", "-3", "x1"} {
		_, err := ParsePositiveInt64Field(raw, "id")
		var fieldErr FieldError
		if !errors.As(err, &fieldErr) || fieldErr.Field != "id" {
			t.Fatalf("%q: expected field error, got %v", raw, err)
		}
	}
	id, err := ParsePositiveInt64Field(" 42 ", "id")
	if err != nil || id != 42 {
		t.Fatalf("unexpected id %d, %v", id, err)
	}
}

func multipartRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", "Es Teh"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if filename != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
		header["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/menu/new", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFormUpload(t *testing.T) {
	req := multipartRequest(t, "picture", "teh.png", "image/png", []byte("png-bytes"))
	if err := ParseMultipart(httptest.NewRecorder(), req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	upload, err := FormUpload(req, "picture", 1<<20, "image/")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if upload.Filename != "teh.png" || upload.ContentType != "image/png" {
		t.Fatalf("unexpected upload %+v", upload)
	}
	data, _ := io.ReadAll(upload.Body)
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestFormUploadMissingIsOptional(t *testing.T) {
	req := multipartRequest(t, "picture", "", "", nil)
	if err := ParseMultipart(httptest.NewRecorder(), req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := FormUpload(req, "picture", 1<<20); !errors.Is(err, ErrNoUpload) {
		t.Fatalf("expected ErrNoUpload, got %v", err)
	}
}

func TestFormUploadRejectsTypeAndSize(t *testing.T) {
	req := multipartRequest(t, "picture", "doc.pdf", "application/pdf", []byte("pdf"))
	if err := ParseMultipart(httptest.NewRecorder(), req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var fieldErr FieldError
	if _, err := FormUpload(req, "picture", 1<<20, "image/"); !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError for type, got %v", err)
	}

	req = multipartRequest(t, "picture", "big.png", "image/png", bytes.Repeat([]byte("x"), 64))
	if err := ParseMultipart(httptest.NewRecorder(), req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := FormUpload(req, "picture", 32, "image/"); !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError for size, got %v", err)
	}
}

func TestParseMultipartTooLarge(t *testing.T) {
	req := multipartRequest(t, "picture", "huge.png", "image/png", bytes.Repeat([]byte("x"), 2<<20))
	err := ParseMultipart(httptest.NewRecorder(), req, 1<<10)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	msg, status := FormParseError(err, "Picture", 1<<10)
	if status != http.StatusRequestEntityTooLarge || msg != "Picture must be 1 KB or smaller" {
		t.Fatalf("unexpected mapping %d %q", status, msg)
	}
}

func TestParseMultipartMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/menu/new", strings.NewReader("not a multipart body"))
	req.Header.Set("Content-Type", "multipart/form-data")
	err := ParseMultipart(httptest.NewRecorder(), req, 1<<20)
	if err == nil || errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected a plain parse error, got %v", err)
	}
	msg, status := FormParseError(err, "Picture", 1<<20)
	if status != http.StatusBadRequest || strings.Contains(msg, "MB") {
		t.Fatalf("unexpected mapping %d %q", status, msg)
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		10 << 20:  "10 MB",
		512 << 10: "512 KB",
		1_500_000: "1.4 MB",
		900:       "900 bytes",
	}
	for n, want := range cases {
		if got := FormatSize(n); got != want {
			t.Fatalf("FormatSize(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFieldMessages(t *testing.T) {
	msgs := FieldMessages([]FieldError{
		{Field: "price", Reason: "is required"},
		{Field: "price", Reason: "must be at least 100"},
	}, map[string]string{"price": "Price"})
	if msgs["price"] != "Price is required" {
		t.Fatalf("expected first error per field, got %q", msgs["price"])
	}
	if FieldMessages(nil, nil) != nil {
		t.Fatalf("expected nil map for no errors")
	}
}
