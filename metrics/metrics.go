// Package metrics exposes selection progress as Prometheus metrics.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Yuheng-Li/citation/cover"
)

var ShutdownTimeout = 5 * time.Second

// Collector holds the selector metrics on its own registry.
type Collector struct {
	Registry *prometheus.Registry

	Picks      prometheus.Counter
	Gain       prometheus.Histogram
	Covered    prometheus.Gauge
	Universe   prometheus.Gauge
	Candidates prometheus.Gauge
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		Registry: reg,

		Picks: factory.NewCounter(prometheus.CounterOpts{
			Name: "citation_selector_picks_total",
			Help: "Total papers picked by the selector",
		}),
		Gain: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "citation_selector_pick_gain",
			Help:    "Newly covered identities per pick",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Covered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "citation_selector_covered_identities",
			Help: "Universe identities covered so far",
		}),
		Universe: factory.NewGauge(prometheus.GaugeOpts{
			Name: "citation_selector_universe_identities",
			Help: "Universe identities to cover",
		}),
		Candidates: factory.NewGauge(prometheus.GaugeOpts{
			Name: "citation_selector_candidates_remaining",
			Help: "Candidates left in the selector's pool",
		}),
	}
	return c
}

// Observer adapts the collector to selector progress notifications.
func (c *Collector) Observer() cover.Observer {
	return cover.ObserverFunc(func(p cover.Progress) {
		c.Picks.Inc()
		c.Gain.Observe(float64(p.Pick.Gain))
		c.Covered.Set(float64(p.Covered))
		c.Universe.Set(float64(p.Total))
		c.Candidates.Set(float64(p.Candidates))
	})
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return c.serve(ctx, ln)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("Serving metrics")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
