// internal/models/themes.go
package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme colors often back larger UI elements, not body text, so we use the AA large-text threshold.
const wcagAAMinContrastRatio = 3.0
const wcagAAContrastNote = "WCAG AA for large text/UI components"
const maxThemeNameLength = 100
const darkTextColor = "#000000"
const lightTextColor = "#FFFFFF"
const defaultThemePrimary = "#2563eb"
const defaultThemeSecondary = "#e5e7eb"
const defaultThemeTertiary = "#f3f4f6"
const defaultThemeAccent = "#8884d8"
const defaultThemeHighlight = "#ff7300"

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
var themeNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ()-]*$`)

func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// Theme is the brand palette for the admin pages and charts.
type Theme struct {
	Name           string `yaml:"name"`
	PrimaryColor   string `yaml:"primary"`
	SecondaryColor string `yaml:"secondary"`
	TertiaryColor  string `yaml:"tertiary"`
	AccentColor    string `yaml:"accent"`
	HighlightColor string `yaml:"highlight"`
}

func DefaultTheme() Theme {
	return Theme{
		Name:           "Warung Wareg",
		PrimaryColor:   defaultThemePrimary,
		SecondaryColor: defaultThemeSecondary,
		TertiaryColor:  defaultThemeTertiary,
		AccentColor:    defaultThemeAccent,
		HighlightColor: defaultThemeHighlight,
	}
}

// WithDefaults fills empty colors from DefaultTheme.
func (t Theme) WithDefaults() Theme {
	def := DefaultTheme()
	if strings.TrimSpace(t.Name) == "" {
		t.Name = def.Name
	}
	t.PrimaryColor = colorOrDefault(t.PrimaryColor, def.PrimaryColor)
	t.SecondaryColor = colorOrDefault(t.SecondaryColor, def.SecondaryColor)
	t.TertiaryColor = colorOrDefault(t.TertiaryColor, def.TertiaryColor)
	t.AccentColor = colorOrDefault(t.AccentColor, def.AccentColor)
	t.HighlightColor = colorOrDefault(t.HighlightColor, def.HighlightColor)
	return t
}

func colorOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func (t Theme) Validate() error {
	trimmedName := strings.TrimSpace(t.Name)
	if trimmedName == "" {
		return fmt.Errorf("name is required")
	}
	if len(trimmedName) > maxThemeNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxThemeNameLength)
	}
	if !themeNameRegex.MatchString(trimmedName) {
		return fmt.Errorf("name may only contain letters, numbers, spaces, hyphens, and parentheses")
	}

	colorFields := []struct {
		name  string
		value string
	}{
		{"primary", t.PrimaryColor},
		{"secondary", t.SecondaryColor},
		{"tertiary", t.TertiaryColor},
		{"accent", t.AccentColor},
		{"highlight", t.HighlightColor},
	}

	for _, field := range colorFields {
		if !hexColorRegex.MatchString(field.value) {
			return fmt.Errorf("%s must be a 6-digit hex color like #AABBCC", field.name)
		}
		if err := validateTextContrast(field.name, field.value); err != nil {
			return err
		}
	}

	return nil
}

// CSSVars renders the palette as :root custom properties.
func (t Theme) CSSVars() string {
	t = t.WithDefaults()
	return fmt.Sprintf(
		":root{--theme-primary:%s;--theme-secondary:%s;--theme-tertiary:%s;--theme-accent:%s;--theme-highlight:%s;}",
		t.PrimaryColor,
		t.SecondaryColor,
		t.TertiaryColor,
		t.AccentColor,
		t.HighlightColor,
	)
}

// Blend mixes two hex colors in Lab space; t=0 returns from, t=1 returns to.
func Blend(from, to string, t float64) (string, error) {
	a, err := colorful.Hex(from)
	if err != nil {
		return "", fmt.Errorf("invalid hex color: %s", from)
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return "", fmt.Errorf("invalid hex color: %s", to)
	}
	return a.BlendLab(b, t).Clamped().Hex(), nil
}

func validateTextContrast(colorName, backgroundColor string) error {
	textColors := []string{darkTextColor, lightTextColor}
	bestRatio := 0.0
	bestText := ""
	for _, textColor := range textColors {
		ratio, err := contrastRatio(textColor, backgroundColor)
		if err != nil {
			return err
		}
		if ratio > bestRatio {
			bestRatio = ratio
			bestText = textColor
		}
	}
	if bestRatio < wcagAAMinContrastRatio {
		return fmt.Errorf(
			"%s must have contrast ratio >= %.1f with #000000 or #FFFFFF text (%s); best is %s at %.2f",
			colorName,
			wcagAAMinContrastRatio,
			wcagAAContrastNote,
			bestText,
			bestRatio,
		)
	}
	return nil
}

func contrastRatio(textColor, backgroundColor string) (float64, error) {
	textL, err := relativeLuminance(textColor)
	if err != nil {
		return 0, err
	}
	backgroundL, err := relativeLuminance(backgroundColor)
	if err != nil {
		return 0, err
	}
	lightest := math.Max(textL, backgroundL)
	darkest := math.Min(textL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05), nil
}

func relativeLuminance(hexColor string) (float64, error) {
	c, err := colorful.Hex(hexColor)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color: %s", hexColor)
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}
