package reconcile

import (
	"context"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImportSummary is what an import reports back: how many movements landed
// plus per-reason counts for everything that did not.
type ImportSummary struct {
	Imported              int `json:"imported"`
	SkippedColumnMismatch int `json:"skippedColumnMismatch"`
	SkippedBadAmount      int `json:"skippedBadAmount"`
	UnparsedDates         int `json:"unparsedDates"`
}

// Importer runs a whole statement import: parse, normalize, batch load.
type Importer struct {
	DB        *gorm.DB
	Log       *zap.Logger
	BatchSize int
	Progress  func(pct int)
}

func NewImporter(db *gorm.DB, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{DB: db, Log: log}
}

func (imp *Importer) Import(ctx context.Context, r io.Reader, opts NormalizeOptions) (*ImportSummary, error) {
	statement, err := ParseStatement(r)
	if err != nil {
		return nil, err
	}
	imp.progress(10)

	if opts.Logger == nil {
		opts.Logger = imp.Log
	}
	normalized, err := Normalize(statement, opts)
	if err != nil {
		return nil, err
	}
	imp.progress(33)

	loader := &Loader{DB: imp.DB, BatchSize: imp.BatchSize, Progress: imp.Progress}
	inserted, err := loader.Load(ctx, normalized.Movements)

	summary := &ImportSummary{
		Imported:              inserted,
		SkippedColumnMismatch: statement.SkippedColumnMismatch,
		SkippedBadAmount:      normalized.SkippedBadAmount,
		UnparsedDates:         normalized.UnparsedDates,
	}
	if err != nil {
		return summary, err
	}

	imp.Log.Info("statement imported",
		zap.Int("imported", summary.Imported),
		zap.Int("skippedColumnMismatch", summary.SkippedColumnMismatch),
		zap.Int("skippedBadAmount", summary.SkippedBadAmount),
		zap.Int("unparsedDates", summary.UnparsedDates),
	)
	return summary, nil
}

func (imp *Importer) progress(pct int) {
	if imp.Progress != nil {
		imp.Progress(pct)
	}
}
