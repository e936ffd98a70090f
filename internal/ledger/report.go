package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PnlPoint is one step of the cumulative profit-and-loss series.
type PnlPoint struct {
	Date          time.Time
	Pnl           decimal.Decimal
	CumulativePnl decimal.Decimal
}

// TransactionStats are the headline numbers for a set of validated transactions.
type TransactionStats struct {
	TotalInvested   decimal.Decimal
	TotalProfitLoss decimal.Decimal
	ClosedCount     int
}

// SummarizeTransactions folds validated transactions into totals.
// TotalInvested covers every validated transaction, open or closed;
// TotalProfitLoss and ClosedCount only count the closed ones.
func SummarizeTransactions(validated []Transaction) TransactionStats {
	stats := TransactionStats{
		TotalInvested:   decimal.Zero,
		TotalProfitLoss: decimal.Zero,
	}
	for _, t := range validated {
		stats.TotalInvested = stats.TotalInvested.Add(t.EntryValue())
		if pnl, ok := t.ProfitLoss(); ok {
			stats.ClosedCount++
			stats.TotalProfitLoss = stats.TotalProfitLoss.Add(pnl)
		}
	}
	return stats
}

// CumulativePnl builds the running profit-and-loss series from validated and
// closed transactions, ordered by transaction date ascending. Ties on the
// date are broken by id so the output is deterministic.
func CumulativePnl(transactions []Transaction) []PnlPoint {
	closed := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.IsValidated && t.IsClosed() {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		if closed[i].TransactionDate.Equal(closed[j].TransactionDate) {
			return closed[i].ID < closed[j].ID
		}
		return closed[i].TransactionDate.Before(closed[j].TransactionDate)
	})

	points := make([]PnlPoint, 0, len(closed))
	running := decimal.Zero
	for _, t := range closed {
		pnl, _ := t.ProfitLoss()
		running = running.Add(pnl)
		points = append(points, PnlPoint{
			Date:          t.TransactionDate,
			Pnl:           pnl,
			CumulativePnl: running,
		})
	}
	return points
}

// FundsSummary is the deposit/withdrawal balance derived from validated requests.
type FundsSummary struct {
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	AvailableFunds   decimal.Decimal
}

// SummarizeFunds sums validated deposits and withdrawals; available funds is
// the difference. Unvalidated requests are ignored by the caller's query.
func SummarizeFunds(validated []Request) FundsSummary {
	s := FundsSummary{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}
	for _, r := range validated {
		switch r.Type {
		case RequestTypeDeposit:
			s.TotalDeposits = s.TotalDeposits.Add(r.Amount)
		case RequestTypeWithdrawal:
			s.TotalWithdrawals = s.TotalWithdrawals.Add(r.Amount)
		}
	}
	s.AvailableFunds = s.TotalDeposits.Sub(s.TotalWithdrawals)
	return s
}
