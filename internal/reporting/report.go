package reporting

import "github.com/codr1/WarungWareg/internal/models"

// Report is everything the dashboard renders for one window.
type Report struct {
	Window  Window
	Orders  []models.Order
	Buckets []Bucket
	Summary Summary
	// Dropped counts filtered orders whose day had no bucket. They are left
	// out of Summary as well as Buckets.
	Dropped int
}

type StatusCounts struct {
	New       int
	Completed int
	Other     int
}

// Build filters orders to w and derives the daily series and totals.
func Build(orders []models.Order, w Window, labelLayout string) Report {
	filtered := Filter(orders, w)
	buckets, dropped := Aggregate(Skeleton(w, labelLayout), filtered, w.location())
	return newReport(w, filtered, buckets, dropped)
}

// newReport totals the buckets rather than the orders, so the headline
// figures always match the charted series.
func newReport(w Window, orders []models.Order, buckets []Bucket, dropped int) Report {
	return Report{
		Window:  w,
		Orders:  orders,
		Buckets: buckets,
		Summary: SumBuckets(buckets),
		Dropped: dropped,
	}
}

func (r Report) StatusCounts() StatusCounts {
	var counts StatusCounts
	for _, order := range r.Orders {
		switch order.Status {
		case models.OrderStatusNew:
			counts.New++
		case models.OrderStatusCompleted:
			counts.Completed++
		default:
			counts.Other++
		}
	}
	return counts
}

// Empty reports whether no orders fell in the window.
func (r Report) Empty() bool {
	return len(r.Orders) == 0
}
