package ga

import (
	"log/slog"
	"time"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation int
	BestIndex  int
	Max        int
	Mean       float64
	Stdev      float64
	BestEver   int
	Duration   time.Duration
}

// Result is the outcome of a full training run.
type Result struct {
	Generations int
	BestIndex   int
	BestFitness int
	Fitnesses   []int
}

// Reporter is notified as training progresses.
type Reporter interface {
	GenerationDone(stats GenerationStats)
	Finished(result Result)
}

// LogReporter writes one structured record per generation and one at the end.
type LogReporter struct {
	Logger *slog.Logger
}

// NewLogReporter returns a reporter writing to logger, or to slog.Default if logger is nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) GenerationDone(s GenerationStats) {
	r.Logger.Info("generation complete",
		slog.Int("generation", s.Generation),
		slog.Int("best_score", s.Max),
		slog.Int("best_index", s.BestIndex),
		slog.Float64("mean", s.Mean),
		slog.Float64("stdev", s.Stdev),
		slog.Int("best_ever", s.BestEver),
		slog.Duration("took", s.Duration),
	)
}

func (r *LogReporter) Finished(res Result) {
	r.Logger.Info("training complete",
		slog.Int("generations", res.Generations),
		slog.Int("best_index", res.BestIndex),
		slog.Int("best_score", res.BestFitness),
	)
}
