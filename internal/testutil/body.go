package testutil

import (
	"bytes"
	"io"
	"net/http"
)

// readAll drains the request body and restores it so handlers can re-read it.
func readAll(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}
