package reporting

import (
	"context"
	"fmt"
	"time"

	"equity-lab/internal/domain"
	"equity-lab/internal/storage"
)

// LoadFixtures seeds demo accounts into the given stores so the report
// command can run without a database.
//
// Account 20001 has a full deposit history with two strategies trading.
// Account 20002 has trade history but no deposits, exercising the
// initial capital inference path.
func LoadFixtures(ctx context.Context, events storage.EventStore, snapshots storage.SnapshotStore) error {
	strategy := func(id int64) *int64 { return &id }
	at := func(day, hour int) time.Time {
		return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
	}

	fixtures := []*domain.DealEvent{
		// Account 20001: deposit, withdrawal, mixed closes.
		{EventID: "f-20001-01", AccountID: "20001", Timestamp: at(2, 9), Kind: domain.KindBalance, Entry: domain.EntryNone, Profit: 15000},
		{EventID: "f-20001-02", AccountID: "20001", Timestamp: at(3, 10), Kind: domain.KindBuy, Entry: domain.EntryOpen, Symbol: "EURUSD", Volume: 0.50, Price: 1.0910},
		{EventID: "f-20001-03", AccountID: "20001", Timestamp: at(3, 15), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "EURUSD", Volume: 0.50, Price: 1.0965, Profit: 275, Commission: -3.50, StrategyID: strategy(101)},
		{EventID: "f-20001-04", AccountID: "20001", Timestamp: at(5, 11), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "GBPUSD", Volume: 0.30, Price: 1.2710, Profit: -180, Commission: -2.10, StrategyID: strategy(101)},
		{EventID: "f-20001-05", AccountID: "20001", Timestamp: at(8, 14), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "XAUUSD", Volume: 0.10, Price: 2045.20, Profit: 620, Commission: -4.00, Swap: -1.25, StrategyID: strategy(102)},
		{EventID: "f-20001-06", AccountID: "20001", Timestamp: at(9, 9), Kind: domain.KindBalance, Entry: domain.EntryNone, Profit: -2000},
		{EventID: "f-20001-07", AccountID: "20001", Timestamp: at(11, 16), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "EURUSD", Volume: 0.40, Price: 1.0880, Profit: 140, Commission: -2.80, StrategyID: strategy(102)},
		{EventID: "f-20001-08", AccountID: "20001", Timestamp: at(12, 10), Kind: domain.KindCorrection, Entry: domain.EntryNone, Profit: 12.40},

		// Account 20002: no deposit history, capital must be inferred.
		{EventID: "f-20002-01", AccountID: "20002", Timestamp: at(4, 10), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "USDJPY", Volume: 0.20, Price: 144.85, Profit: 310, Commission: -1.90, StrategyID: strategy(201)},
		{EventID: "f-20002-02", AccountID: "20002", Timestamp: at(7, 13), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "USDJPY", Volume: 0.20, Price: 143.90, Profit: -120, Commission: -1.90, StrategyID: strategy(201)},
		{EventID: "f-20002-03", AccountID: "20002", Timestamp: at(10, 15), Kind: domain.KindSell, Entry: domain.EntryClose, Symbol: "EURUSD", Volume: 0.10, Price: 1.0930, Profit: 85, Commission: -0.70},
	}

	if err := events.InsertBulk(ctx, fixtures); err != nil {
		return fmt.Errorf("insert fixture events: %w", err)
	}

	snaps := []*domain.AccountSnapshot{
		{AccountID: "20001", Balance: 13862.15, Equity: 13840.90, TakenAt: at(12, 18)},
		{AccountID: "20002", Balance: 5270.50, Equity: 5270.50, TakenAt: at(12, 18)},
	}
	for _, s := range snaps {
		if err := snapshots.Put(ctx, s); err != nil {
			return fmt.Errorf("store fixture snapshot %s: %w", s.AccountID, err)
		}
	}

	return nil
}
