package rowstore

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	callCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_rowstore_calls_total",
			Help: "Total number of row store calls",
		},
		[]string{"op", "sheet", "result"},
	)

	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_rowstore_call_duration_seconds",
			Help:    "Duration of row store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "sheet"},
	)
)

// Collectors returns the row store metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{callCounter, callDuration}
}

// Instrumented wraps a Store with metrics and failure logging.
type Instrumented struct {
	next Store
	log  *zap.Logger
}

// NewInstrumented decorates next. A nil logger disables logging.
func NewInstrumented(next Store, log *zap.Logger) *Instrumented {
	if log == nil {
		log = zap.NewNop()
	}
	return &Instrumented{next: next, log: log}
}

func (s *Instrumented) ReadRange(ctx context.Context, rng string) ([][]interface{}, error) {
	var rows [][]interface{}
	err := s.observe("read", sheetOf(rng), func() error {
		var err error
		rows, err = s.next.ReadRange(ctx, rng)
		return err
	})
	return rows, err
}

func (s *Instrumented) AppendRow(ctx context.Context, rng string, row []interface{}) error {
	return s.observe("append", sheetOf(rng), func() error {
		return s.next.AppendRow(ctx, rng, row)
	})
}

func (s *Instrumented) UpdateRow(ctx context.Context, rng string, row []interface{}) error {
	return s.observe("update", sheetOf(rng), func() error {
		return s.next.UpdateRow(ctx, rng, row)
	})
}

func (s *Instrumented) DeleteRows(ctx context.Context, sheet string, rows []int) error {
	return s.observe("delete", sheet, func() error {
		return s.next.DeleteRows(ctx, sheet, rows)
	})
}

func (s *Instrumented) observe(op, sheet string, fn func() error) error {
	start := time.Now()
	err := fn()
	callDuration.WithLabelValues(op, sheet).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
		s.log.Warn("row store call failed",
			zap.String("op", op),
			zap.String("sheet", sheet),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
	}
	callCounter.WithLabelValues(op, sheet, result).Inc()
	return err
}

func sheetOf(rng string) string {
	sheet, _, _ := strings.Cut(rng, "!")
	return strings.Trim(sheet, "'")
}
