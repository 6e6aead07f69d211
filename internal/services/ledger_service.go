package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/amqp"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/ledger"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/log"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/migration"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

// LedgerService is the write path: it runs mutations through the ledger
// engine, then publishes change events so external reactive consumers can
// refresh. Publishing is best-effort; the write already committed, so an
// event failure is logged and never surfaced to the caller.
type LedgerService struct {
	store      *storage.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store *storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Ledger returns the engine handle scoped to one owner.
func (s *LedgerService) Ledger(ownerID string) *ledger.Ledger {
	return ledger.New(s.store, ownerID)
}

// Store exposes the entity store for read paths.
func (s *LedgerService) Store() *storage.Store {
	return s.store
}

func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID string, input ledger.Input) (core.Transaction, error) {
	t, err := s.Ledger(ownerID).Create(ctx, input)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, "transaction", t.ID, ownerID, "created")
	s.publishAccountEvents(ctx, t)
	return t, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, ownerID, id string, patch ledger.Patch) (core.Transaction, error) {
	t, err := s.Ledger(ownerID).Update(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, "transaction", t.ID, ownerID, "updated")
	s.publishAccountEvents(ctx, t)
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.Ledger(ownerID).Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "transaction", id, ownerID, "deleted")
	return nil
}

func (s *LedgerService) ContributeToGoal(ctx context.Context, ownerID, goalID string, amount decimal.Decimal, accountID, description string) (core.Transaction, error) {
	t, err := s.Ledger(ownerID).ContributeToGoal(ctx, goalID, amount, accountID, description)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, "transaction", t.ID, ownerID, "created")
	s.publish(ctx, "goal", goalID, ownerID, "updated")
	s.publish(ctx, "account", accountID, ownerID, "updated")
	return t, nil
}

func (s *LedgerService) WithdrawFromGoal(ctx context.Context, ownerID, goalID string, amount decimal.Decimal, accountID, description string) (core.Transaction, error) {
	t, err := s.Ledger(ownerID).WithdrawFromGoal(ctx, goalID, amount, accountID, description)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, "transaction", t.ID, ownerID, "created")
	s.publish(ctx, "goal", goalID, ownerID, "updated")
	s.publish(ctx, "account", accountID, ownerID, "updated")
	return t, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, ownerID, goalID string) error {
	if err := s.Ledger(ownerID).DeleteGoal(ctx, goalID); err != nil {
		return err
	}
	s.publish(ctx, "goal", goalID, ownerID, "deleted")
	return nil
}

// MigrateOwner reassigns the whole owner scope and announces the change.
func (s *LedgerService) MigrateOwner(ctx context.Context, fromID, toID string) (migration.Result, error) {
	result, err := migration.NewEngine(s.store).Migrate(ctx, fromID, toID)
	if err != nil {
		return migration.Result{}, err
	}
	s.publish(ctx, "user", fromID, toID, "migrated")
	return result, nil
}

func (s *LedgerService) publish(ctx context.Context, entity, entityID, ownerID, action string) {
	if s.amqpClient == nil {
		return
	}
	event := amqp.NewChangeEvent(entity, entityID, ownerID, action)
	if err := s.amqpClient.PublishChangeEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity, "entity_id", entityID, "action", action,
			log.FieldOwnerID, ownerID,
			log.FieldError, err)
	}
}

func (s *LedgerService) publishAccountEvents(ctx context.Context, t core.Transaction) {
	if t.AccountID != "" {
		s.publish(ctx, "account", t.AccountID, t.OwnerID, "updated")
	}
	if t.ToAccountID != "" {
		s.publish(ctx, "account", t.ToAccountID, t.OwnerID, "updated")
	}
	if t.GoalID != "" {
		s.publish(ctx, "goal", t.GoalID, t.OwnerID, "updated")
	}
}

// Close closes the store and the AMQP connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
