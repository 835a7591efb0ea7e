// Package classify tags raw deal events with their ledger category.
// Classification is a total function over the event kind enum: every
// event lands in exactly one category, with Adjustment as the catch-all
// for balance-affecting records that are neither capital movements nor
// trade closes.
package classify

import (
	"errors"
	"fmt"
	"math"

	"equity-lab/internal/domain"
)

// ErrInvalidEvent is returned for events with a malformed timestamp or a
// non-finite numeric field. Invalid events are rejected at classification;
// callers log and skip them, they are not fatal to a batch.
var ErrInvalidEvent = errors.New("invalid event")

// Classify tags a single event. Pure, order-independent.
func Classify(e domain.DealEvent) (domain.ClassifiedEvent, error) {
	if err := validate(&e); err != nil {
		return domain.ClassifiedEvent{}, err
	}

	return domain.ClassifiedEvent{
		DealEvent: e,
		Category:  categoryOf(&e),
	}, nil
}

// ClassifyAll classifies a batch, collecting invalid events as errors
// instead of failing the batch. Output order follows input order.
func ClassifyAll(events []domain.DealEvent) ([]domain.ClassifiedEvent, []error) {
	classified := make([]domain.ClassifiedEvent, 0, len(events))
	var errs []error

	for _, e := range events {
		ce, err := Classify(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		classified = append(classified, ce)
	}

	return classified, errs
}

// categoryOf applies the classification rule. Balance movements split on
// the sign of profit; trade kinds split on the entry flag; everything
// else counts toward realized P&L as an adjustment.
func categoryOf(e *domain.DealEvent) domain.Category {
	switch e.Kind {
	case domain.KindBalance:
		if e.Profit > 0 {
			return domain.CategoryDeposit
		}
		if e.Profit < 0 {
			return domain.CategoryWithdrawal
		}
		return domain.CategoryAdjustment
	case domain.KindBuy, domain.KindSell:
		if e.Entry == domain.EntryClose {
			return domain.CategoryTradeClose
		}
		if e.Entry == domain.EntryOpen {
			return domain.CategoryTradeOpen
		}
		return domain.CategoryAdjustment
	default:
		return domain.CategoryAdjustment
	}
}

// validate rejects malformed timestamps and non-finite numerics.
func validate(e *domain.DealEvent) error {
	if e.EventID == "" {
		return fmt.Errorf("%w: empty event id", ErrInvalidEvent)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: event %s has zero timestamp", ErrInvalidEvent, e.EventID)
	}
	for _, f := range [...]struct {
		name  string
		value float64
	}{
		{"profit", e.Profit},
		{"commission", e.Commission},
		{"swap", e.Swap},
		{"volume", e.Volume},
		{"price", e.Price},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: event %s has non-finite %s", ErrInvalidEvent, e.EventID, f.name)
		}
	}
	return nil
}
