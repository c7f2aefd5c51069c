package view

import "github.com/zappabad/trenchor/internal/ledger"

// TradeLog is an append-only record of one player's trades.
type TradeLog struct {
	trades []ledger.Trade
	stats  ledger.TradeStats
}

func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

func (l *TradeLog) Append(tr ledger.Trade) {
	l.trades = append(l.trades, tr)
	l.stats.Total++
	switch tr.Side {
	case ledger.SideBuy:
		l.stats.Buys++
	case ledger.SideSell:
		l.stats.Sells++
	}
}

// Last returns up to n most recent trades in chronological order (oldest first).
func (l *TradeLog) Last(n int) []ledger.Trade {
	if n <= 0 || len(l.trades) == 0 {
		return nil
	}
	if n > len(l.trades) {
		n = len(l.trades)
	}
	out := make([]ledger.Trade, n)
	copy(out, l.trades[len(l.trades)-n:])
	return out
}

// All returns a copy of every trade.
func (l *TradeLog) All() []ledger.Trade {
	return l.Last(len(l.trades))
}

func (l *TradeLog) Len() int { return len(l.trades) }

func (l *TradeLog) Stats() ledger.TradeStats { return l.stats }
