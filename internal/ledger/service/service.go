package service

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zappabad/trenchor/internal/ledger"
	ledgerview "github.com/zappabad/trenchor/internal/ledger/view"
	"github.com/zappabad/trenchor/internal/logging"
	"github.com/zappabad/trenchor/internal/market"
)

// account is one player's cash, holdings and trades. They are created and
// dropped together.
type account struct {
	id       ledger.PlayerID
	balance  decimal.Decimal
	initial  decimal.Decimal
	holdings map[market.CommodityID]int64
	trades   *ledgerview.TradeLog
}

// Ledger tracks cash and holdings for every player and enforces that neither
// can go negative. A rejected operation leaves all state untouched.
type Ledger struct {
	cfg Config
	log logrus.FieldLogger
	now func() time.Time

	mu          sync.RWMutex
	commodities map[market.CommodityID]struct{}
	accounts    map[ledger.PlayerID]*account
	order       []ledger.PlayerID
}

// NewLedger creates an empty ledger that accepts trades in the given commodities.
func NewLedger(commodities []market.CommodityID, cfg Config, log logrus.FieldLogger) *Ledger {
	if cfg.RecentTrades <= 0 {
		cfg.RecentTrades = DefaultConfig().RecentTrades
	}

	known := make(map[market.CommodityID]struct{}, len(commodities))
	for _, c := range commodities {
		known[c] = struct{}{}
	}

	return &Ledger{
		cfg:         cfg,
		log:         logging.OrDiscard(log),
		now:         time.Now,
		commodities: known,
		accounts:    make(map[ledger.PlayerID]*account),
	}
}

// RegisterPlayer opens an account with the given starting cash.
func (l *Ledger) RegisterPlayer(id ledger.PlayerID, startingBalance decimal.Decimal) error {
	if startingBalance.IsNegative() {
		return fmt.Errorf("%w: starting balance %s is negative", ledger.ErrInvalidAmount, startingBalance)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[id]; exists {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicatePlayer, id)
	}
	l.accounts[id] = &account{
		id:       id,
		balance:  startingBalance,
		initial:  startingBalance,
		holdings: make(map[market.CommodityID]int64),
		trades:   ledgerview.NewTradeLog(),
	}
	l.order = append(l.order, id)

	l.log.WithFields(logrus.Fields{"player": id, "balance": startingBalance.StringFixed(2)}).Debug("player registered")
	return nil
}

// lookup validates player, commodity and trade size, in that order.
// Must be called with l.mu held.
func (l *Ledger) lookup(id ledger.PlayerID, c market.CommodityID, qty int64, unitPrice decimal.Decimal) (*account, error) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	if _, ok := l.commodities[c]; !ok {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownCommodity, c)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: %d", ledger.ErrInvalidQuantity, qty)
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("%w: unit price %s", ledger.ErrInvalidAmount, unitPrice)
	}
	return a, nil
}

// ApplyBuy debits qty*unitPrice and credits qty units of the commodity.
func (l *Ledger) ApplyBuy(id ledger.PlayerID, c market.CommodityID, qty int64, unitPrice decimal.Decimal, round int) (ledger.Execution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.lookup(id, c, qty, unitPrice)
	if err != nil {
		return ledger.Execution{}, err
	}

	cost := unitPrice.Mul(decimal.NewFromInt(qty))
	if cost.GreaterThan(a.balance) {
		return ledger.Execution{}, fmt.Errorf("%w: need %s, have %s",
			ledger.ErrInsufficientFunds, cost.StringFixed(2), a.balance.StringFixed(2))
	}

	a.balance = a.balance.Sub(cost)
	a.holdings[c] += qty
	tr := l.record(a, ledger.SideBuy, c, qty, unitPrice, round)

	return ledger.Execution{Trade: tr, Amount: cost, Balance: a.balance}, nil
}

// ApplySell credits qty*unitPrice and removes qty units of the commodity.
func (l *Ledger) ApplySell(id ledger.PlayerID, c market.CommodityID, qty int64, unitPrice decimal.Decimal, round int) (ledger.Execution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.lookup(id, c, qty, unitPrice)
	if err != nil {
		return ledger.Execution{}, err
	}

	owned := a.holdings[c]
	if qty > owned {
		return ledger.Execution{}, fmt.Errorf("%w: own %d, want to sell %d",
			ledger.ErrInsufficientHoldings, owned, qty)
	}

	revenue := unitPrice.Mul(decimal.NewFromInt(qty))
	a.balance = a.balance.Add(revenue)
	if owned == qty {
		delete(a.holdings, c)
	} else {
		a.holdings[c] = owned - qty
	}
	tr := l.record(a, ledger.SideSell, c, qty, unitPrice, round)

	return ledger.Execution{Trade: tr, Amount: revenue, Balance: a.balance}, nil
}

func (l *Ledger) record(a *account, side ledger.Side, c market.CommodityID, qty int64, unitPrice decimal.Decimal, round int) ledger.Trade {
	tr := ledger.Trade{
		ID:        uuid.New(),
		Side:      side,
		Commodity: c,
		Quantity:  qty,
		Price:     unitPrice,
		Round:     round,
		Time:      l.now(),
	}
	a.trades.Append(tr)

	l.log.WithFields(logrus.Fields{
		"player":    a.id,
		"side":      side,
		"commodity": c,
		"quantity":  qty,
		"price":     unitPrice.StringFixed(2),
		"round":     round,
	}).Debug("trade recorded")
	return tr
}

// Players returns every player id in registration order.
func (l *Ledger) Players() []ledger.PlayerID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ledger.PlayerID, len(l.order))
	copy(out, l.order)
	return out
}

// Has reports whether a player is registered.
func (l *Ledger) Has(id ledger.PlayerID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.accounts[id]
	return ok
}

// Balance returns a player's cash.
func (l *Ledger) Balance(id ledger.PlayerID) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return a.balance, nil
}

// InitialBalance returns the cash a player started with.
func (l *Ledger) InitialBalance(id ledger.PlayerID) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return a.initial, nil
}

// Holdings returns a copy of a player's non-zero holdings.
func (l *Ledger) Holdings(id ledger.PlayerID) (map[market.CommodityID]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return copyHoldings(a.holdings), nil
}

// Holding returns how many units of one commodity a player owns.
func (l *Ledger) Holding(id ledger.PlayerID, c market.CommodityID) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return a.holdings[c], nil
}

// Trades returns a copy of a player's full trade history.
func (l *Ledger) Trades(id ledger.PlayerID) ([]ledger.Trade, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return a.trades.All(), nil
}

// Valuation is cash plus every holding at the prices resolved now. Nothing is cached.
func (l *Ledger) Valuation(id ledger.PlayerID, prices ledger.PriceLookup) (ledgerview.Valuation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return ledgerview.Valuation{}, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	return valuate(a, prices)
}

// Report builds the detailed view of a player as of the given round.
func (l *Ledger) Report(id ledger.PlayerID, round int, prices ledger.PriceLookup) (ledgerview.PlayerReport, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return ledgerview.PlayerReport{}, fmt.Errorf("%w: %s", ledger.ErrUnknownPlayer, id)
	}
	v, err := valuate(a, prices)
	if err != nil {
		return ledgerview.PlayerReport{}, err
	}

	return ledgerview.PlayerReport{
		Name:         a.id,
		Round:        round,
		Balance:      a.balance,
		Initial:      a.initial,
		Portfolio:    v,
		Holdings:     copyHoldings(a.holdings),
		RecentTrades: a.trades.Last(l.cfg.RecentTrades),
		Stats:        a.trades.Stats(),
	}, nil
}

func valuate(a *account, prices ledger.PriceLookup) (ledgerview.Valuation, error) {
	// sorted for a stable summation order
	ids := make([]market.CommodityID, 0, len(a.holdings))
	for c := range a.holdings {
		ids = append(ids, c)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := decimal.Zero
	for _, c := range ids {
		qty := a.holdings[c]
		if qty <= 0 {
			continue
		}
		p, err := prices.Price(c)
		if err != nil {
			return ledgerview.Valuation{}, err
		}
		held = held.Add(p.Mul(decimal.NewFromInt(qty)))
	}

	return ledgerview.Valuation{
		Cash:     a.balance,
		Holdings: held,
		Total:    a.balance.Add(held),
	}, nil
}

func copyHoldings(h map[market.CommodityID]int64) map[market.CommodityID]int64 {
	out := make(map[market.CommodityID]int64, len(h))
	for c, qty := range h {
		if qty > 0 {
			out[c] = qty
		}
	}
	return out
}
