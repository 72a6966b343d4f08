package portfolio

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/zappabad/marketrush/internal/market"
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnknownAction        = errors.New("unknown action")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientPosition = errors.New("insufficient position")
)

const avgPricePlaces = 8

func validate(t Trade) error {
	if !(t.Amount > 0) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return ErrInvalidAmount
	}
	switch t.Action {
	case ActionBuy, ActionSell, ActionShort, ActionCover:
		return nil
	default:
		return ErrUnknownAction
	}
}

// Apply executes t against l and returns the updated ledger.
// On error the input ledger is returned untouched. The input's holdings map
// is never modified.
// Quantities and cash are settled in decimal.
func Apply(l Ledger, t Trade) (Ledger, Report, error) {
	if err := validate(t); err != nil {
		return l, Report{}, err
	}

	h := l.Holdings[t.Asset]
	amount := decimal.NewFromFloat(t.Amount)
	price := decimal.NewFromFloat(t.Price)
	value := amount.Mul(price)
	cash := decimal.NewFromFloat(l.Cash)

	switch t.Action {
	case ActionBuy:
		if value.GreaterThan(cash) {
			return l, Report{}, ErrInsufficientFunds
		}
		cash = cash.Sub(value)
		held := decimal.NewFromFloat(h.Quantity)
		qty := held.Add(amount)
		h.AverageBuyPrice = decimal.NewFromFloat(h.AverageBuyPrice).Mul(held).Add(value).
			DivRound(qty, avgPricePlaces).InexactFloat64()
		h.Quantity = qty.InexactFloat64()

	case ActionSell:
		held := decimal.NewFromFloat(h.Quantity)
		if amount.GreaterThan(held) {
			return l, Report{}, ErrInsufficientPosition
		}
		cash = cash.Add(value)
		h.Quantity = held.Sub(amount).InexactFloat64()

	case ActionShort:
		cash = cash.Add(value)
		held := decimal.NewFromFloat(h.ShortQuantity)
		qty := held.Add(amount)
		h.AverageShortPrice = decimal.NewFromFloat(h.AverageShortPrice).Mul(held).Add(value).
			DivRound(qty, avgPricePlaces).InexactFloat64()
		h.ShortQuantity = qty.InexactFloat64()

	case ActionCover:
		held := decimal.NewFromFloat(h.ShortQuantity)
		if amount.GreaterThan(held) {
			return l, Report{}, ErrInsufficientPosition
		}
		if value.GreaterThan(cash) {
			return l, Report{}, ErrInsufficientFunds
		}
		cash = cash.Sub(value)
		h.ShortQuantity = held.Sub(amount).InexactFloat64()
	}

	holdings := l.Holdings.Clone()
	holdings[t.Asset] = h

	return Ledger{Cash: cash.InexactFloat64(), Holdings: holdings}, Report{
		Trade:     t,
		CashDelta: cash.Sub(decimal.NewFromFloat(l.Cash)).InexactFloat64(),
		Holding:   h,
	}, nil
}

// NetWorth is cash plus long market value plus unrealized short P&L.
// Holdings with no entry in prices are skipped.
func NetWorth(cash float64, holdings Holdings, prices map[market.AssetID]float64) float64 {
	total := cash
	for id, h := range holdings {
		price, ok := prices[id]
		if !ok {
			continue
		}
		total += h.Quantity * price
		total += h.ShortQuantity * (h.AverageShortPrice - price)
	}
	return total
}

// Exposure returns the market value of the long and short sides of holdings.
// Holdings with no entry in prices are skipped.
func Exposure(holdings Holdings, prices map[market.AssetID]float64) (long, short float64) {
	for id, h := range holdings {
		price, ok := prices[id]
		if !ok {
			continue
		}
		long += h.Quantity * price
		short += h.ShortQuantity * price
	}
	return long, short
}
