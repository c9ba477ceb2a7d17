// Package charts renders the dashboard time series as standalone SVG.
package charts

import (
	"bytes"
	"fmt"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/money"
	"github.com/codr1/WarungWareg/internal/reporting"
)

type Kind string

const (
	KindRevenue Kind = "revenue"
	KindOrders  Kind = "orders"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindRevenue, KindOrders:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("unknown chart kind %q", value)
	}
}

const (
	width        = 800
	height       = 300
	marginLeft   = 96
	marginRight  = 24
	marginTop    = 20
	marginBottom = 44
	yTicks       = 4
	maxXLabels   = 8
	gradientID   = "revenueFill"
	emptyMessage = "Belum ada data"
)

type point struct {
	label string
	value decimal.Decimal
}

// Render draws the chart for kind. Revenue is a gradient area chart in the
// theme accent; orders is a line chart in the theme highlight.
func Render(kind Kind, buckets []reporting.Bucket, theme models.Theme) ([]byte, error) {
	theme = theme.WithDefaults()
	points := make([]point, len(buckets))
	for i, b := range buckets {
		switch kind {
		case KindRevenue:
			points[i] = point{label: b.Label, value: b.TotalRevenue}
		case KindOrders:
			points[i] = point{label: b.Label, value: decimal.NewFromInt(b.TotalOrders)}
		default:
			return nil, fmt.Errorf("unknown chart kind %q", kind)
		}
	}

	gridColor, err := models.Blend(theme.SecondaryColor, "#000000", 0.1)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height),
		`role="img"`,
		`preserveAspectRatio="none"`,
	)
	canvas.Title(chartTitle(kind))

	if len(points) == 0 {
		canvas.Text(width/2, height/2, emptyMessage, "text-anchor:middle;font-size:14px;fill:#6b7280")
		canvas.End()
		return buf.Bytes(), nil
	}

	maxValue := niceCeiling(maxOf(points))
	xs, ys := project(points, maxValue)

	drawGrid(canvas, kind, maxValue, gridColor)
	drawXLabels(canvas, points, xs)

	switch kind {
	case KindRevenue:
		stroke, err := models.Blend(theme.AccentColor, "#000000", 0.25)
		if err != nil {
			return nil, err
		}
		canvas.Def()
		canvas.LinearGradient(gradientID, 0, 0, 0, 100, []svg.Offcolor{
			{Offset: 5, Color: theme.AccentColor, Opacity: 0.8},
			{Offset: 95, Color: theme.AccentColor, Opacity: 0},
		})
		canvas.DefEnd()

		baseline := marginTop + plotHeight()
		areaX := append([]int{xs[0]}, xs...)
		areaX = append(areaX, xs[len(xs)-1])
		areaY := append([]int{baseline}, ys...)
		areaY = append(areaY, baseline)
		canvas.Polygon(areaX, areaY, fmt.Sprintf("fill:url(#%s);stroke:none", gradientID))
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", stroke))
		drawPoints(canvas, kind, points, xs, ys, stroke)
	case KindOrders:
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", theme.HighlightColor))
		drawPoints(canvas, kind, points, xs, ys, theme.HighlightColor)
	}

	canvas.End()
	return buf.Bytes(), nil
}

func chartTitle(kind Kind) string {
	if kind == KindRevenue {
		return "Total Revenue"
	}
	return "Total Orders"
}

func plotWidth() int  { return width - marginLeft - marginRight }
func plotHeight() int { return height - marginTop - marginBottom }

// project maps points to pixel coordinates; a single point sits centred.
func project(points []point, maxValue decimal.Decimal) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	pw, ph := plotWidth(), plotHeight()
	for i, p := range points {
		if len(points) == 1 {
			xs[i] = marginLeft + pw/2
		} else {
			xs[i] = marginLeft + i*pw/(len(points)-1)
		}
		ys[i] = marginTop + ph - scale(p.value, maxValue, ph)
	}
	return xs, ys
}

func scale(value, maxValue decimal.Decimal, span int) int {
	if !maxValue.IsPositive() || !value.IsPositive() {
		return 0
	}
	ratio := value.Div(maxValue).InexactFloat64()
	if ratio > 1 {
		ratio = 1
	}
	return int(ratio*float64(span) + 0.5)
}

func maxOf(points []point) decimal.Decimal {
	maxValue := decimal.Zero
	for _, p := range points {
		if p.value.GreaterThan(maxValue) {
			maxValue = p.value
		}
	}
	return maxValue
}

// niceCeiling rounds v up to 1, 2, 4 or 8 times a power of ten so the
// four grid steps land on round values.
func niceCeiling(v decimal.Decimal) decimal.Decimal {
	floor := decimal.NewFromInt(yTicks)
	if v.LessThanOrEqual(floor) {
		return floor
	}
	magnitude := decimal.NewFromInt(1)
	ten := decimal.NewFromInt(10)
	for magnitude.Mul(ten).LessThan(v) {
		magnitude = magnitude.Mul(ten)
	}
	for _, step := range []int64{1, 2, 4, 8} {
		candidate := magnitude.Mul(decimal.NewFromInt(step))
		if candidate.GreaterThanOrEqual(v) {
			return candidate
		}
	}
	return magnitude.Mul(ten)
}

func drawGrid(canvas *svg.SVG, kind Kind, maxValue decimal.Decimal, gridColor string) {
	ph := plotHeight()
	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-dasharray:3 3", gridColor))
	for i := 0; i <= yTicks; i++ {
		y := marginTop + ph - i*ph/yTicks
		canvas.Line(marginLeft, y, width-marginRight, y)
	}
	canvas.Gend()

	canvas.Gstyle("font-size:11px;fill:#6b7280;text-anchor:end")
	for i := 0; i <= yTicks; i++ {
		y := marginTop + ph - i*ph/yTicks
		value := maxValue.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(yTicks))
		canvas.Text(marginLeft-8, y+4, tickLabel(kind, value))
	}
	canvas.Gend()
}

func tickLabel(kind Kind, value decimal.Decimal) string {
	if kind == KindRevenue {
		return money.FormatWhole(value)
	}
	return value.Round(0).String()
}

func drawXLabels(canvas *svg.SVG, points []point, xs []int) {
	step := (len(points) + maxXLabels - 1) / maxXLabels
	if step < 1 {
		step = 1
	}
	y := marginTop + plotHeight() + 20
	canvas.Gstyle("font-size:11px;fill:#6b7280;text-anchor:middle")
	for i := 0; i < len(points); i += step {
		canvas.Text(xs[i], y, points[i].label)
	}
	canvas.Gend()
}

// drawPoints adds hover targets carrying a <title> tooltip per day.
func drawPoints(canvas *svg.SVG, kind Kind, points []point, xs, ys []int, color string) {
	canvas.Gstyle(fmt.Sprintf("fill:%s;fill-opacity:0", color))
	for i, p := range points {
		canvas.Group(`class="chart-point"`)
		canvas.Title(p.label + ": " + pointValue(kind, p.value))
		canvas.Circle(xs[i], ys[i], 6)
		canvas.Gend()
	}
	canvas.Gend()
}

func pointValue(kind Kind, value decimal.Decimal) string {
	if kind == KindRevenue {
		return money.Format(value)
	}
	return strconv.FormatInt(value.IntPart(), 10) + " orders"
}
