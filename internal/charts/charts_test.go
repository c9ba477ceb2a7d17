package charts

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/reporting"
)

func sampleBuckets() []reporting.Bucket {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	values := []string{"10000", "0", "25000.50", "5000"}
	buckets := make([]reporting.Bucket, len(values))
	for i, v := range values {
		d := day.AddDate(0, 0, i)
		buckets[i] = reporting.Bucket{
			Day:          d,
			Key:          reporting.DayKey(d, time.UTC),
			Label:        d.Format(reporting.DefaultLabelLayout),
			TotalRevenue: decimal.RequireFromString(v),
			TotalOrders:  int64(i),
		}
	}
	return buckets
}

func assertWellFormed(t *testing.T, data []byte) {
	t.Helper()
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		_, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("svg is not well-formed: %v\n%s", err, data)
		}
	}
}

func TestRenderRevenueUsesGradientAndAccent(t *testing.T) {
	theme := models.DefaultTheme()
	data, err := Render(KindRevenue, sampleBuckets(), theme)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertWellFormed(t, data)

	out := string(data)
	if !strings.Contains(out, `id="revenueFill"`) {
		t.Fatalf("expected gradient definition")
	}
	if !strings.Contains(out, theme.AccentColor) {
		t.Fatalf("expected accent color %s in output", theme.AccentColor)
	}
	if !strings.Contains(out, "3/3/2024: Rp25.000,50") {
		t.Fatalf("expected tooltip with formatted revenue")
	}
	if !strings.Contains(out, "<polygon") {
		t.Fatalf("expected area polygon")
	}
}

func TestRenderOrdersUsesHighlight(t *testing.T) {
	theme := models.DefaultTheme()
	data, err := Render(KindOrders, sampleBuckets(), theme)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertWellFormed(t, data)

	out := string(data)
	if !strings.Contains(out, theme.HighlightColor) {
		t.Fatalf("expected highlight color %s in output", theme.HighlightColor)
	}
	if strings.Contains(out, "<polygon") {
		t.Fatalf("orders chart should not draw an area")
	}
	if !strings.Contains(out, "3/4/2024: 3 orders") {
		t.Fatalf("expected tooltip with order count")
	}
}

func TestRenderEmpty(t *testing.T) {
	data, err := Render(KindRevenue, nil, models.Theme{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertWellFormed(t, data)
	if !strings.Contains(string(data), emptyMessage) {
		t.Fatalf("expected empty message")
	}
}

func TestRenderSingleBucket(t *testing.T) {
	data, err := Render(KindOrders, sampleBuckets()[:1], models.DefaultTheme())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertWellFormed(t, data)
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("revenue"); err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if _, err := ParseKind("orders"); err != nil {
		t.Fatalf("orders: %v", err)
	}
	if _, err := ParseKind("pie"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestNiceCeiling(t *testing.T) {
	tests := map[string]string{
		"0":        "4",
		"3":        "4",
		"7":        "8",
		"9":        "10",
		"150":      "200",
		"25000.5":  "40000",
		"1000000":  "1000000",
		"-5":       "4",
		"80000001": "100000000",
	}
	for in, want := range tests {
		got := niceCeiling(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("niceCeiling(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestProjectStaysInsidePlot(t *testing.T) {
	points := []point{
		{label: "a", value: decimal.NewFromInt(0)},
		{label: "b", value: decimal.NewFromInt(50)},
		{label: "c", value: decimal.NewFromInt(100)},
	}
	xs, ys := project(points, decimal.NewFromInt(100))
	if xs[0] != marginLeft || xs[2] != width-marginRight {
		t.Fatalf("unexpected x range %v", xs)
	}
	if ys[0] != marginTop+plotHeight() || ys[2] != marginTop {
		t.Fatalf("unexpected y range %v", ys)
	}
}
