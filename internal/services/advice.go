package services

import (
	"context"
	"fmt"

	"finsmart/internal/aggregate"
	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/records"
)

// ErrNoData is returned when advice is requested before any transaction
// has been recorded.
var ErrNoData = fmt.Errorf("%w: no transactions to analyze yet", core.ErrValidation)

type AdviceService struct {
	tables  TableStore
	advisor Advisor
	logger  *log.Logger
}

func NewAdviceService(tables TableStore, advisor Advisor, logger *log.Logger) *AdviceService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AdviceService{tables: tables, advisor: advisor, logger: logger.WithComponent(log.ComponentAdvisor)}
}

// Advise summarizes email's transactions and asks the advisor for tips.
func (s *AdviceService) Advise(ctx context.Context, email string) (string, error) {
	sum := aggregate.Summarize(s.tables.Load(ctx, records.Transactions), email)
	if !sum.HasData() {
		return "", ErrNoData
	}
	text, err := s.advisor.Advise(ctx, sum)
	if err != nil {
		s.logger.ErrorContext(ctx, "Advice request failed",
			log.FieldUser, email, log.FieldOperation, log.OpAdvise, log.FieldError, err)
		return "", err
	}
	return text, nil
}
