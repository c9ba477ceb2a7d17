// internal/api/dashboard/handlers.go
package dashboard

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/WarungWareg/internal/api/apiutil"
	"github.com/codr1/WarungWareg/internal/api/htmx"
	"github.com/codr1/WarungWareg/internal/backend"
	"github.com/codr1/WarungWareg/internal/charts"
	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/money"
	"github.com/codr1/WarungWareg/internal/reporting"
	"github.com/codr1/WarungWareg/internal/session"
	dashboardtempl "github.com/codr1/WarungWareg/internal/templates/components/dashboard"
	"github.com/codr1/WarungWareg/internal/templates/layouts"
)

const (
	orderDateLayout      = "02/01/2006 15:04"
	msgOrdersUnavailable = "Data pesanan tidak dapat dimuat. Coba lagi nanti."
	chartPathPrefix      = "/api/v1/dashboard/charts/"
)

var (
	client    *backend.Client
	appConfig *config.Config

	// now is swapped in tests.
	now = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(c *backend.Client, cfg *config.Config) {
	if c == nil || cfg == nil {
		log.Warn().Msg("InitHandlers called with nil client or config; dashboard handlers will be unavailable")
		return
	}
	client = c
	appConfig = cfg
}

// HandleDashboardPage renders GET /dashboard.
func HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if client == nil {
		logger.Error().Msg("Dashboard handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, ok := session.TokenFromContext(r.Context())
	if !ok {
		htmx.Redirect(w, r, "/login")
		return
	}

	var (
		user      models.User
		orders    []models.Order
		ordersErr error
	)
	// Order failures degrade the view, so only the profile fetch fails the group.
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		profile, err := client.Profile(ctx, token)
		if err != nil {
			return err
		}
		user = profile
		return nil
	})
	g.Go(func() error {
		list, err := client.Orders(ctx, token)
		if err != nil {
			ordersErr = err
			return nil
		}
		orders = list
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Failed to load profile; sending user to login")
		htmx.Redirect(w, r, "/login")
		return
	}
	if ordersErr != nil {
		logger.Error().Err(ordersErr).Msg("Failed to load orders")
	}

	report, err := buildReport(orders)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err)
		return
	}
	data := dashboardData(report)
	if ordersErr != nil {
		data.OrdersError = msgOrdersUnavailable
	}
	if report.Dropped > 0 {
		logger.Warn().Int("dropped", report.Dropped).Msg("Orders fell outside every day bucket")
	}

	component := dashboardtempl.DashboardLayout(data)
	if !htmx.IsRequest(r) {
		component = layouts.Base(component, apiutil.PageData(appConfig, &user, "Dashboard", "dashboard"))
	}
	apiutil.RenderHTMLComponent(r.Context(), w, component, nil, "Failed to render dashboard page", "Failed to render page")
}

// HandleDashboardMetrics renders the KPI cards for HTMX refreshes.
func HandleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	report, ok := loadReport(w, r)
	if !ok {
		return
	}
	apiutil.RenderHTMLComponent(r.Context(), w, dashboardtempl.Metrics(dashboardData(report)), nil,
		"Failed to render dashboard metrics", "Failed to render metrics")
}

type seriesWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone"`
}

type seriesResponse struct {
	Window  seriesWindow       `json:"window"`
	Buckets []reporting.Bucket `json:"buckets"`
	Summary reporting.Summary  `json:"summary"`
	Dropped int                `json:"dropped"`
}

// HandleSeries serves GET /api/v1/dashboard/series.
func HandleSeries(w http.ResponseWriter, r *http.Request) {
	report, ok := loadReport(w, r)
	if !ok {
		return
	}
	resp := seriesResponse{
		Window: seriesWindow{
			Start:    report.Window.Start,
			End:      report.Window.End,
			Timezone: report.Window.Location.String(),
		},
		Buckets: report.Buckets,
		Summary: report.Summary,
		Dropped: report.Dropped,
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write series response")
	}
}

// HandleChart serves GET /api/v1/dashboard/charts/{kind}.svg.
func HandleChart(w http.ResponseWriter, r *http.Request) {
	kind, err := charts.ParseKind(strings.TrimSuffix(r.PathValue("kind"), ".svg"))
	if err != nil {
		http.Error(w, "Unknown chart", http.StatusNotFound)
		return
	}
	report, ok := loadReport(w, r)
	if !ok {
		return
	}
	body, err := charts.Render(kind, report.Buckets, appConfig.Theme)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Failed to render chart",
			Err:     err,
		})
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("kind", string(kind)).Msg("Failed to write chart")
	}
}

// loadReport fetches orders for the session token and writes an error
// response itself when that fails.
func loadReport(w http.ResponseWriter, r *http.Request) (reporting.Report, bool) {
	if client == nil {
		log.Ctx(r.Context()).Error().Msg("Dashboard handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return reporting.Report{}, false
	}
	token, ok := session.TokenFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return reporting.Report{}, false
	}
	orders, err := client.Orders(r.Context(), token)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, ordersError(err))
		return reporting.Report{}, false
	}
	report, err := buildReport(orders)
	if err != nil {
		apiutil.WriteHandlerError(r.Context(), w, err)
		return reporting.Report{}, false
	}
	return report, true
}

func ordersError(err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		return apiutil.HandlerError{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: err}
	}
	return apiutil.HandlerError{Status: http.StatusBadGateway, Message: "Failed to load orders", Err: err}
}

func buildReport(orders []models.Order) (reporting.Report, error) {
	loc, err := appConfig.Location()
	if err != nil {
		return reporting.Report{}, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Invalid dashboard timezone",
			Err:     err,
		}
	}
	window, err := reporting.TrailingMonths(now(), appConfig.Dashboard.WindowMonths, loc)
	if err != nil {
		return reporting.Report{}, apiutil.HandlerError{
			Status:  http.StatusInternalServerError,
			Message: "Invalid dashboard window",
			Err:     err,
		}
	}
	return reporting.Build(orders, window, appConfig.Dashboard.DateLabelLayout), nil
}

func dashboardData(report reporting.Report) dashboardtempl.DashboardData {
	loc := report.Window.Location
	layout := appConfig.Dashboard.DateLabelLayout
	if layout == "" {
		layout = reporting.DefaultLabelLayout
	}
	counts := report.StatusCounts()

	rows := make([]dashboardtempl.OrderRow, 0, len(report.Orders))
	for _, order := range report.Orders {
		rows = append(rows, dashboardtempl.OrderRow{
			UUID:          order.DisplayUUID(),
			Customer:      order.Customer,
			TableNumber:   order.TableNumber,
			Total:         money.Format(order.TotalPrice),
			PaymentMethod: order.PaymentMethod,
			Status:        string(order.Status),
			StatusClass:   order.Status.StatusClass(),
			CreatedAt:     order.CreatedAt.In(loc).Format(orderDateLayout),
		})
	}

	return dashboardtempl.DashboardData{
		TotalRevenue: money.Format(report.Summary.TotalRevenue),
		TotalOrders:  report.Summary.TotalOrders,
		Statuses: dashboardtempl.StatusCounts{
			New:       counts.New,
			Completed: counts.Completed,
			Other:     counts.Other,
		},
		WindowLabel:     report.Window.Start.Format(layout) + " - " + report.Window.End.Format(layout),
		Orders:          rows,
		Dropped:         report.Dropped,
		RevenueChartURL: chartPathPrefix + string(charts.KindRevenue) + ".svg",
		OrdersChartURL:  chartPathPrefix + string(charts.KindOrders) + ".svg",
		Palette:         dashboardtempl.NewStatusPalette(appConfig.Theme),
	}
}

