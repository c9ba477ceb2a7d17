package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/codr1/WarungWareg/internal/models"
)

func TestDashboardLayoutRendersOrders(t *testing.T) {
	data := DashboardData{
		TotalRevenue: "Rp15.000,00",
		TotalOrders:  1,
		Palette:      NewStatusPalette(models.DefaultTheme()),
		Orders: []OrderRow{{
			UUID:        "-",
			Customer:    "<Budi>",
			TableNumber: 4,
			Total:       "Rp15.000,00",
			Status:      "NEW",
			StatusClass: "new",
			CreatedAt:   "3/1/2024",
		}},
	}

	var buf bytes.Buffer
	if err := DashboardLayout(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "&lt;Budi&gt;") {
		t.Fatalf("expected escaped customer name")
	}
	if !strings.Contains(out, "status-new") {
		t.Fatalf("expected status class")
	}
	if !strings.Contains(out, `id="total-revenue" class="text-2xl font-semibold">Rp15.000,00`) {
		t.Fatalf("expected revenue card")
	}
}

func TestOrderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := OrderTable(DashboardData{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Belum ada pesanan") {
		t.Fatalf("expected empty state")
	}
}

func TestStatusPaletteTintsThemeColors(t *testing.T) {
	theme := models.DefaultTheme()
	palette := NewStatusPalette(theme)
	if palette.For("new") == theme.HighlightColor {
		t.Fatalf("expected tinted highlight, got raw color")
	}
	if !models.IsHexColor(palette.For("completed")) {
		t.Fatalf("expected hex color, got %q", palette.For("completed"))
	}
	if palette.For("unknown") != "#f3f4f6" {
		t.Fatalf("expected fallback color")
	}
}

func TestOrderTableStatusBadgeUsesPalette(t *testing.T) {
	palette := NewStatusPalette(models.DefaultTheme())
	data := DashboardData{
		Palette: palette,
		Orders:  []OrderRow{{UUID: "a1", Customer: "Sari", Status: "COMPLETED", StatusClass: "completed"}},
	}

	var buf bytes.Buffer
	if err := OrderTable(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `style="background-color:` + palette.For("completed") + `;"`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected %s in %s", want, buf.String())
	}
}
