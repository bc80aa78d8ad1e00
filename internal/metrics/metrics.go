package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outbox groups the delivery-pipeline collectors. OldestPendingAge is the
// alerting signal for events stuck beyond the delivery SLA.
type Outbox struct {
	PendingEvents    prometheus.Gauge
	OldestPendingAge prometheus.Gauge
	Deliveries       *prometheus.CounterVec
}

func NewOutbox(reg prometheus.Registerer) *Outbox {
	factory := promauto.With(reg)
	return &Outbox{
		PendingEvents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_outbox_pending_events",
			Help: "Number of outbox events waiting for delivery.",
		}),
		OldestPendingAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_outbox_oldest_pending_age_seconds",
			Help: "Age of the oldest undelivered outbox event.",
		}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_outbox_deliveries_total",
			Help: "Outbox delivery attempts by outcome.",
		}, []string{"outcome"}),
	}
}

func (o *Outbox) ObserveBacklog(count int, oldestAge time.Duration) {
	o.PendingEvents.Set(float64(count))
	o.OldestPendingAge.Set(oldestAge.Seconds())
}

type HealthFunc func(ctx context.Context) error

// StartServer runs a small HTTP server for /metrics and /healthz on its own
// port, away from the public API.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
