package auth

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLoginFormKeepsEmailAndError(t *testing.T) {
	var buf bytes.Buffer
	err := LoginForm(LoginFormData{Email: "a@b.id", Error: "Email atau password salah."}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `value="a@b.id"`) {
		t.Fatalf("expected email to be kept")
	}
	if !strings.Contains(out, "Email atau password salah.") {
		t.Fatalf("expected error message")
	}
}

func TestRegisterFormSuccessRedirects(t *testing.T) {
	var buf bytes.Buffer
	err := RegisterForm(RegisterFormData{Success: "Registrasi berhasil", RedirectTo: "/login"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `hx-get="/login"`) {
		t.Fatalf("expected delayed redirect to login")
	}
}
