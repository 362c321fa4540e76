package reconcile

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/models"
)

const DefaultBatchSize = 100

// Loader inserts normalized movements in fixed-size batches. Each batch is
// a single insert, so a batch lands whole or not at all; batches inserted
// before a failure are not rolled back.
type Loader struct {
	DB        *gorm.DB
	BatchSize int

	// Progress, when set, receives an overall import percentage. Parsing
	// and normalization occupy 0-33; loading fills 33-100. It reaches 100
	// only when every movement is inserted.
	Progress func(pct int)
}

func (l *Loader) Load(ctx context.Context, movements []Movement) (int, error) {
	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := len(movements)
	inserted := 0
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}

		batch := make([]models.BankMovement, 0, end-start)
		for _, m := range movements[start:end] {
			batch = append(batch, models.BankMovement{
				CompanyID:   m.CompanyID,
				Date:        m.Date,
				Description: m.Description,
				Amount:      m.Amount,
				Currency:    m.Currency,
				Reference:   m.Reference,
				UserID:      m.UserID,
			})
		}

		if err := l.DB.WithContext(ctx).Create(&batch).Error; err != nil {
			return inserted, &PartialBatchError{Inserted: inserted, Total: total, Err: err}
		}
		inserted = end
		l.report(inserted, total)
	}

	return inserted, nil
}

func (l *Loader) report(inserted, total int) {
	if l.Progress == nil || total == 0 {
		return
	}
	l.Progress(33 + inserted*67/total)
}
