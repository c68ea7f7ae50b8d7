package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_booking_bookings_created_total",
			Help: "Bookings created through checkout",
		},
		[]string{"payment_method"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_booking_status_transitions_total",
			Help: "Booking status transitions, including rejected ones",
		},
		[]string{"from", "to", "result"},
	)

	seatHolds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_booking_seat_holds_total",
			Help: "Seat hold attempts by result",
		},
		[]string{"result"},
	)

	payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_booking_payments_total",
			Help: "Simulated payment authorizations",
		},
		[]string{"method", "status"},
	)

	checkoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_booking_checkout_duration_seconds",
			Help:    "End to end checkout latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"outcome"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_booking_events_published_total",
			Help: "bookings.changed notifications published",
		},
		[]string{"kind", "status"},
	)

	sseClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_booking_event_stream_clients",
			Help: "Currently connected booking event stream clients",
		},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_booking_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func BookingCreated(method string) {
	bookingsCreated.WithLabelValues(method).Inc()
}

func StatusTransition(from, to string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	bookingTransitions.WithLabelValues(from, to, result).Inc()
}

// SeatHold result: acquired, conflict, error
func SeatHold(result string, n int) {
	seatHolds.WithLabelValues(result).Add(float64(n))
}

func Payment(method, status string) {
	payments.WithLabelValues(method, status).Inc()
}

func ObserveCheckout(outcome string, started time.Time) {
	checkoutDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

func EventPublished(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventsPublished.WithLabelValues(kind, status).Inc()
}

func StreamClientConnected() { sseClients.Inc() }

func StreamClientDisconnected() { sseClients.Dec() }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware catat latency per route pattern chi, bukan path mentah
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
