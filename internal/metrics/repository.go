package metrics

import (
	"context"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK      = "ok"
	resultMissing = "not_found"
	resultError   = "error"
)

// RepositoryMetrics метрики операций репозитория заметок
type RepositoryMetrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Notes      prometheus.Gauge
}

// NewRepositoryMetrics создает и регистрирует метрики в reg
func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	m := &RepositoryMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notes_repository_operations_total",
				Help: "Number of note repository operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notes_repository_operation_duration_seconds",
				Help:    "Duration of note repository operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Notes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "notes_stored",
				Help: "Number of notes seen by the last list operation",
			},
		),
	}

	reg.MustRegister(m.Operations, m.Duration, m.Notes)
	return m
}

var _ repository.NoteRepository = (*instrumented)(nil)

type instrumented struct {
	next    repository.NoteRepository
	metrics *RepositoryMetrics
}

// InstrumentRepository оборачивает репозиторий, считая операции и их длительность
func InstrumentRepository(next repository.NoteRepository, m *RepositoryMetrics) repository.NoteRepository {
	return &instrumented{next: next, metrics: m}
}

func (r *instrumented) observe(op string, start time.Time, result string) {
	r.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	r.metrics.Operations.WithLabelValues(op, result).Inc()
}

func result(err error, found bool) string {
	switch {
	case err != nil:
		return resultError
	case !found:
		return resultMissing
	default:
		return resultOK
	}
}

func (r *instrumented) List(ctx context.Context) ([]model.NoteSummary, error) {
	start := time.Now()
	notes, err := r.next.List(ctx)
	r.observe("list", start, result(err, true))
	if err == nil {
		r.metrics.Notes.Set(float64(len(notes)))
	}
	return notes, err
}

func (r *instrumented) GetByID(ctx context.Context, id string) (model.Note, bool, error) {
	start := time.Now()
	note, ok, err := r.next.GetByID(ctx, id)
	r.observe("get", start, result(err, ok))
	return note, ok, err
}

func (r *instrumented) Create(ctx context.Context, in model.NoteInput) (model.Note, error) {
	start := time.Now()
	note, err := r.next.Create(ctx, in)
	r.observe("create", start, result(err, true))
	return note, err
}

func (r *instrumented) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, bool, error) {
	start := time.Now()
	note, ok, err := r.next.Update(ctx, id, patch)
	r.observe("update", start, result(err, ok))
	return note, ok, err
}

func (r *instrumented) DeleteMany(ctx context.Context, ids []string) error {
	start := time.Now()
	err := r.next.DeleteMany(ctx, ids)
	r.observe("delete", start, result(err, true))
	return err
}
