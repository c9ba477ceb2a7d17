package apiutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/backend"
)

var (
	// ErrNoUpload means the optional file field was left empty.
	ErrNoUpload = errors.New("no file uploaded")
	// ErrBodyTooLarge means the form went past the upload limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

const msgFormUnreadable = "The form could not be read. Please try again."

// ParsePositiveInt64Field parses an id-like value that must be above zero.
func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// ParseDecimalField parses a decimal form value; an empty value is required.
func ParseDecimalField(raw string, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, FieldError{Field: field, Reason: "is required"}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, FieldError{Field: field, Reason: "must be a number"}
	}
	return value, nil
}

// ParseMultipart parses a multipart form bounded by limit bytes; plain
// url-encoded posts are accepted too.
func ParseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(limit)
	} else {
		err = r.ParseForm()
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: %w", ErrBodyTooLarge, err)
	}
	return err
}

// FormParseError maps a ParseMultipart failure to the message shown above
// the form and the response status. label names the upload field.
func FormParseError(err error, label string, limit int64) (string, int) {
	if errors.Is(err, ErrBodyTooLarge) {
		return fmt.Sprintf("%s must be %s or smaller", label, FormatSize(limit)), http.StatusRequestEntityTooLarge
	}
	return msgFormUnreadable, http.StatusBadRequest
}

// FormatSize renders a byte limit the way it is shown to users.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// FormUpload reads an optional file field fully into memory so it can be
// forwarded to the backend. allowed lists accepted content type prefixes.
func FormUpload(r *http.Request, field string, limit int64, allowed ...string) (*backend.Upload, error) {
	if r.MultipartForm == nil {
		return nil, ErrNoUpload
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ErrNoUpload
	}
	if err != nil {
		return nil, FieldError{Field: field, Reason: "could not be read"}
	}
	defer file.Close()

	if header.Size == 0 {
		return nil, ErrNoUpload
	}
	if header.Size > limit {
		return nil, FieldError{Field: field, Reason: "must be " + FormatSize(limit) + " or smaller"}
	}

	contentType := header.Header.Get("Content-Type")
	if !contentTypeAllowed(contentType, allowed) {
		return nil, FieldError{Field: field, Reason: "has an unsupported file type"}
	}

	data, err := readLimited(file, limit)
	if err != nil {
		return nil, FieldError{Field: field, Reason: "could not be read"}
	}
	return &backend.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        bytes.NewReader(data),
	}, nil
}

func contentTypeAllowed(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, prefix := range allowed {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
