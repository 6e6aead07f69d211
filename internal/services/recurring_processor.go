package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/ledger"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/log"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

// RecurringProcessor materializes due recurring templates into real ledger
// entries, so scheduled expenses and transfers hit account balances through
// the same engine as manual ones.
type RecurringProcessor struct {
	store         *storage.Store
	ledgerService *LedgerService
}

func NewRecurringProcessor(store *storage.Store, ledgerService *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{
		store:         store,
		ledgerService: ledgerService,
	}
}

// ProcessDue walks every active template, checks dueness for its frequency,
// creates the concrete transaction, and stamps the run time. A failing
// template is logged and skipped; the rest still run.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.ledgerService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListActiveRecurringTransactions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list active recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"),
		log.FieldComponent, log.ComponentWorker)

	processed := 0
	for _, tmpl := range templates {
		checker, err := GetDuenessChecker(tmpl.Frequency)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with unknown frequency",
				"id", tmpl.ID, "frequency", string(tmpl.Frequency))
			continue
		}

		var lastRun time.Time
		if tmpl.LastRunAt != nil {
			lastRun = *tmpl.LastRunAt
		}
		if !checker.IsDue(lastRun, now, tmpl.StartDate) {
			continue
		}

		_, err = p.ledgerService.CreateTransaction(ctx, tmpl.OwnerID, ledger.Input{
			Type:          tmpl.Type,
			Amount:        tmpl.Amount,
			AccountID:     tmpl.AccountID,
			ToAccountID:   tmpl.ToAccountID,
			CategoryID:    tmpl.CategoryID,
			SubcategoryID: tmpl.SubcategoryID,
			Description:   tmpl.Description,
			Date:          now,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"template_id", tmpl.ID,
				"description", tmpl.Description,
				log.FieldOwnerID, tmpl.OwnerID,
				log.FieldError, err)
			continue
		}

		if err := p.store.WithTx(ctx, func(q *storage.Queries) error {
			return q.SetRecurringLastRun(ctx, tmpl.ID, now)
		}); err != nil {
			slog.ErrorContext(ctx, "Failed to update last run time",
				"template_id", tmpl.ID,
				log.FieldError, err)
			// Continue anyway, the transaction was created
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"template_id", tmpl.ID,
			"description", tmpl.Description,
			log.FieldAmount, tmpl.Amount.String(),
			"frequency", string(tmpl.Frequency))
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}
