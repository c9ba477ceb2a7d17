package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
)

// Bucket is one calendar day of aggregated revenue and order count.
type Bucket struct {
	Day          time.Time       `json:"-"`
	Key          string          `json:"key"`
	Label        string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int64           `json:"totalOrders"`
}

// Summary holds the headline KPI values.
type Summary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int64           `json:"totalOrders"`
}

// Skeleton returns one zeroed bucket per calendar day of w, oldest first.
func Skeleton(w Window, labelLayout string) []Bucket {
	loc := w.location()
	if labelLayout == "" {
		labelLayout = DefaultLabelLayout
	}
	first := StartOfDay(w.Start, loc)
	last := StartOfDay(w.End, loc)

	buckets := make([]Bucket, 0, w.Days())
	for d := first; !d.After(last); d = nextDay(d, loc) {
		buckets = append(buckets, Bucket{
			Day:          d,
			Key:          d.Format(DayKeyLayout),
			Label:        d.Format(labelLayout),
			TotalRevenue: decimal.Zero,
		})
	}
	return buckets
}

// Filter keeps the orders created inside w. Input order is preserved.
func Filter(orders []models.Order, w Window) []models.Order {
	filtered := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if w.Contains(order.CreatedAt) {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

// Aggregate folds orders into a copy of skeleton by day key. Orders whose
// day has no bucket are dropped rather than appended, and counted in the
// second return value. skeleton itself is left untouched.
func Aggregate(skeleton []Bucket, orders []models.Order, loc *time.Location) ([]Bucket, int) {
	if loc == nil {
		loc = time.Local
	}
	buckets := make([]Bucket, len(skeleton))
	copy(buckets, skeleton)

	index := make(map[string]int, len(buckets))
	for i, bucket := range buckets {
		index[bucket.Key] = i
	}

	dropped := 0
	for _, order := range orders {
		i, ok := index[DayKey(order.CreatedAt, loc)]
		if !ok {
			dropped++
			continue
		}
		buckets[i].TotalRevenue = buckets[i].TotalRevenue.Add(order.TotalPrice)
		buckets[i].TotalOrders++
	}
	return buckets, dropped
}

func Summarize(orders []models.Order) Summary {
	summary := Summary{TotalRevenue: decimal.Zero}
	for _, order := range orders {
		summary.TotalRevenue = summary.TotalRevenue.Add(order.TotalPrice)
		summary.TotalOrders++
	}
	return summary
}

// SumBuckets totals a bucket series; for filtered input it equals Summarize.
func SumBuckets(buckets []Bucket) Summary {
	summary := Summary{TotalRevenue: decimal.Zero}
	for _, bucket := range buckets {
		summary.TotalRevenue = summary.TotalRevenue.Add(bucket.TotalRevenue)
		summary.TotalOrders += bucket.TotalOrders
	}
	return summary
}
