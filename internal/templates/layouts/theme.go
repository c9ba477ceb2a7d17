package layouts

import (
	"strings"

	"github.com/codr1/WarungWareg/internal/models"
)

// themeCSSVars ignores invalid colors so a bad config value cannot inject CSS.
func themeCSSVars(theme models.Theme) string {
	def := models.DefaultTheme()
	theme.PrimaryColor = themeColorOrDefault(theme.PrimaryColor, def.PrimaryColor)
	theme.SecondaryColor = themeColorOrDefault(theme.SecondaryColor, def.SecondaryColor)
	theme.TertiaryColor = themeColorOrDefault(theme.TertiaryColor, def.TertiaryColor)
	theme.AccentColor = themeColorOrDefault(theme.AccentColor, def.AccentColor)
	theme.HighlightColor = themeColorOrDefault(theme.HighlightColor, def.HighlightColor)
	return theme.CSSVars()
}

func themeColorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	if !models.IsHexColor(trimmed) {
		return fallback
	}
	return trimmed
}
