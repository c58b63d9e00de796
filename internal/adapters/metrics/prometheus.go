// Package metrics exports pipeline and HTTP metrics to Prometheus.
package metrics

import (
	"strconv"

	"instatistics/internal/domain"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "instatistics"

// Prometheus records dataset pipeline events.
type Prometheus struct {
	CacheLookups   *prometheus.CounterVec
	DatasetsLoaded *prometheus.CounterVec
	DatasetPosts   *prometheus.HistogramVec
	SourceFailures *prometheus.CounterVec
}

// NewPrometheus registers the pipeline metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Dataset store lookups by source and result.",
		}, []string{"source", "hit"}),
		DatasetsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_loaded_total",
			Help:      "Datasets read from a source.",
		}, []string{"source"}),
		DatasetPosts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_posts",
			Help:      "Number of posts per loaded dataset.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000},
		}, []string{"source"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Failed dataset loads by source.",
		}, []string{"source"}),
	}
}

// CacheLookup counts a store lookup.
func (p *Prometheus) CacheLookup(source domain.SourceKind, hit bool) {
	p.CacheLookups.WithLabelValues(string(source), strconv.FormatBool(hit)).Inc()
}

// DatasetLoaded counts a dataset read from its source.
func (p *Prometheus) DatasetLoaded(source domain.SourceKind, posts int) {
	p.DatasetsLoaded.WithLabelValues(string(source)).Inc()
	p.DatasetPosts.WithLabelValues(string(source)).Observe(float64(posts))
}

// SourceFailed counts a failed dataset load.
func (p *Prometheus) SourceFailed(source domain.SourceKind) {
	p.SourceFailures.WithLabelValues(string(source)).Inc()
}

// RegisterHTTP instruments the app and serves the default registry at path.
func RegisterHTTP(app *fiber.App, service, path string) {
	prom := fiberprometheus.New(service)
	prom.RegisterAt(app, path)
	app.Use(prom.Middleware)
}
