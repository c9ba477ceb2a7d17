package dashboard

import (
	"strconv"

	"github.com/codr1/WarungWareg/internal/models"
)

var orderHeaders = []string{"UUID", "Customer", "Table", "Total", "Payment", "Status", "Date"}

type OrderRow struct {
	UUID          string
	Customer      string
	TableNumber   int
	Total         string
	PaymentMethod string
	Status        string
	StatusClass   string
	CreatedAt     string
}

type StatusCounts struct {
	New       int
	Completed int
	Other     int
}

func (s StatusCounts) String() string {
	return strconv.Itoa(s.New) + " / " + strconv.Itoa(s.Completed) + " / " + strconv.Itoa(s.Other)
}

type DashboardData struct {
	TotalRevenue string
	TotalOrders  int64
	Statuses     StatusCounts
	WindowLabel  string
	Orders       []OrderRow
	// Dropped counts orders inside the window that matched no day bucket.
	Dropped int
	// OrdersError is shown when the order list could not be loaded.
	OrdersError     string
	RevenueChartURL string
	OrdersChartURL  string
	Palette         StatusPalette
}

// StatusPalette maps a status class to its badge background.
type StatusPalette map[string]string

// NewStatusPalette tints theme colors toward white so badge text stays readable.
func NewStatusPalette(theme models.Theme) StatusPalette {
	theme = theme.WithDefaults()
	palette := StatusPalette{
		"new":       theme.HighlightColor,
		"completed": theme.PrimaryColor,
		"other":     theme.SecondaryColor,
	}
	for class, base := range palette {
		if tinted, err := models.Blend(base, "#ffffff", 0.7); err == nil {
			palette[class] = tinted
		}
	}
	return palette
}

func (p StatusPalette) For(class string) string {
	if color, ok := p[class]; ok {
		return color
	}
	return "#f3f4f6"
}
