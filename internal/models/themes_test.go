package models

import (
	"strings"
	"testing"
)

func TestIsHexColor(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "empty", value: "", want: false},
		{name: "whitespace", value: "   ", want: false},
		{name: "missing_hash", value: "AABBCC", want: false},
		{name: "short_hex", value: "#ABC", want: false},
		{name: "long_hex", value: "#AABBCCDD", want: false},
		{name: "invalid_char", value: "#AABBCG", want: false},
		{name: "lowercase_hex", value: "#aabbcc", want: true},
		{name: "uppercase_hex", value: "#AABBCC", want: true},
		{name: "trimmed_hex", value: "  #AABBCC  ", want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsHexColor(test.value); got != test.want {
				t.Fatalf("IsHexColor(%q) = %t, want %t", test.value, got, test.want)
			}
		})
	}
}

func TestDefaultThemeValidates(t *testing.T) {
	if err := DefaultTheme().Validate(); err != nil {
		t.Fatalf("default theme invalid: %v", err)
	}
}

func TestThemeValidateRejectsBadColor(t *testing.T) {
	theme := DefaultTheme()
	theme.AccentColor = "blue"
	err := theme.Validate()
	if err == nil || !strings.Contains(err.Error(), "accent") {
		t.Fatalf("expected accent color error, got %v", err)
	}
}

func TestThemeWithDefaultsFillsBlanks(t *testing.T) {
	theme := Theme{PrimaryColor: "#111111"}.WithDefaults()
	if theme.PrimaryColor != "#111111" {
		t.Fatalf("primary overwritten: %s", theme.PrimaryColor)
	}
	if theme.AccentColor != defaultThemeAccent {
		t.Fatalf("accent = %s, want %s", theme.AccentColor, defaultThemeAccent)
	}
	if theme.Name == "" {
		t.Fatal("expected default name")
	}
}

func TestBlendEndpoints(t *testing.T) {
	from, err := Blend("#000000", "#ffffff", 0)
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if from != "#000000" {
		t.Fatalf("blend(0) = %s, want #000000", from)
	}
	to, err := Blend("#000000", "#ffffff", 1)
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if to != "#ffffff" {
		t.Fatalf("blend(1) = %s, want #ffffff", to)
	}
	if _, err := Blend("nope", "#ffffff", 0.5); err == nil {
		t.Fatal("expected error for invalid color")
	}
}
