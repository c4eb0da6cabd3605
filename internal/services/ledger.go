package services

import (
	"context"

	"github.com/shopspring/decimal"

	"finsmart/internal/aggregate"
	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/records"
	"finsmart/internal/store"
)

// Dashboard is everything the dashboard screen shows for one user.
type Dashboard struct {
	User      core.User
	Summary   core.Summary
	History   []core.Transaction
	Overspent bool
	// BudgetLeft is the total budget minus expenses.
	BudgetLeft decimal.Decimal
}

type LedgerService struct {
	tables   TableStore
	notifier OverspendNotifier
	logger   *log.Logger
}

// NewLedgerService builds the ledger. notifier may be nil.
func NewLedgerService(tables TableStore, notifier OverspendNotifier, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{tables: tables, notifier: notifier, logger: logger.WithComponent(log.ComponentLedger)}
}

// Record appends tx and saves the Transactions table. When the new row
// takes the user over the overspend threshold the notifier is called; a
// notification failure is logged and does not fail the recording.
func (s *LedgerService) Record(ctx context.Context, tx core.Transaction) (Dashboard, error) {
	txs := s.tables.Load(ctx, records.Transactions)
	before := aggregate.Summarize(txs, tx.User)

	txs, err := store.AppendTransaction(txs, tx)
	if err != nil {
		return Dashboard{}, err
	}
	if err := s.tables.Save(ctx, txs); err != nil {
		return Dashboard{}, err
	}
	log.NewStructuredLogger(s.logger).LogTransactionRecorded(ctx, tx.User, tx.Date.String(), tx.Category.String(), core.FormatCell(tx.Amount))

	d := s.dashboard(ctx, tx.User, txs)
	if d.Overspent && !before.Overspent(d.User.TotalBudget) {
		s.notify(ctx, d)
	}
	return d, nil
}

// Dashboard loads the current figures for email.
func (s *LedgerService) Dashboard(ctx context.Context, email string) Dashboard {
	return s.dashboard(ctx, email, s.tables.Load(ctx, records.Transactions))
}

func (s *LedgerService) dashboard(ctx context.Context, email string, txs records.Table) Dashboard {
	u, ok := store.FindUser(s.tables.Load(ctx, records.Users), email)
	if !ok {
		u = core.User{Email: email}
	}
	sum := aggregate.Summarize(txs, email)
	return Dashboard{
		User:       u,
		Summary:    sum,
		History:    aggregate.History(txs, email),
		Overspent:  sum.Overspent(u.TotalBudget),
		BudgetLeft: u.TotalBudget.Sub(sum.Expense),
	}
}

func (s *LedgerService) notify(ctx context.Context, d Dashboard) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOverspend(ctx, d.User, d.Summary); err != nil {
		s.logger.WarnContext(ctx, "Overspend notification failed",
			log.FieldUser, d.User.Email, log.FieldOperation, log.OpNotify, log.FieldError, err)
	}
}
