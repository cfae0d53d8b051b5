package points

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/PaesslerAG/gval"

	"github.com/driverperks/catalog/app/search"
)

// Converter turns a marketplace price into loyalty points. It is built
// once per scope per request and closes over the resolved policy, so
// batch conversion never repeats the policy lookup or formula compile.
type Converter func(price float64) int64

// formulaLanguage is the sandbox for the formula strategy: arithmetic
// plus a fixed allow-list of functions, nothing else. Expressions only
// ever see the price variable.
var formulaLanguage = gval.NewLanguage(
	gval.Arithmetic(),
	gval.Function("sqrt", func(x float64) float64 { return math.Sqrt(x) }),
	gval.Function("min", func(a, b float64) float64 { return math.Min(a, b) }),
	gval.Function("max", func(a, b float64) float64 { return math.Max(a, b) }),
)

// NewConverter resolves a policy into a conversion closure. A nil policy
// derives a flat rate from the scope's price-per-point ratio, falling
// back to the default rate when the ratio is absent or non-positive.
func NewConverter(policy *Policy, pricePerPoint float64) Converter {
	if policy == nil {
		rate := DefaultFlatRate
		if pricePerPoint > 0 {
			rate = 1 / pricePerPoint
		}
		return finish(flatStrategy(rate), nil, nil, RoundingNone)
	}

	var raw func(price float64) float64
	switch policy.Strategy {
	case StrategyTiered:
		raw = tieredStrategy(policy.Config)
	case StrategyFormula:
		raw = formulaStrategy(policy.Config)
	default:
		raw = flatFromConfig(policy.Config)
	}

	return finish(raw, policy.MinPoints, policy.MaxPoints, policy.Rounding)
}

// ConvertAll annotates items in place. Items without a price get nil
// points so downstream points-range filters can skip them instead of
// treating them as free.
func ConvertAll(conv Converter, items []search.Item) {
	for i := range items {
		if items[i].Price == nil {
			items[i].Points = nil
			continue
		}
		p := conv(*items[i].Price)
		items[i].Points = &p
	}
}

func finish(raw func(float64) float64, minPoints, maxPoints *int64, rounding Rounding) Converter {
	return func(price float64) int64 {
		v := raw(price)
		if minPoints != nil && v < float64(*minPoints) {
			v = float64(*minPoints)
		}
		if maxPoints != nil && v > float64(*maxPoints) {
			v = float64(*maxPoints)
		}
		return round(v, rounding)
	}
}

func round(v float64, rounding Rounding) int64 {
	switch rounding {
	case RoundingNearest10:
		return int64(math.Round(v/10) * 10)
	case RoundingNearest25:
		return int64(math.Round(v/25) * 25)
	case RoundingUp10:
		return int64(math.Ceil(v/10) * 10)
	default:
		return int64(math.Round(v))
	}
}

func flatStrategy(rate float64) func(float64) float64 {
	return func(price float64) float64 {
		return price * rate
	}
}

func flatFromConfig(config json.RawMessage) func(float64) float64 {
	rate := DefaultFlatRate
	if len(config) > 0 {
		var c flatConfig
		if err := json.Unmarshal(config, &c); err != nil {
			slog.Warn("Invalid flat strategy config, using default rate", "error", err)
		} else if c.Rate > 0 {
			rate = c.Rate
		}
	}
	return flatStrategy(rate)
}

// tieredStrategy applies the band whose [min, max) range contains the
// price; the last band is the catch-all.
func tieredStrategy(config json.RawMessage) func(float64) float64 {
	var c tieredConfig
	if err := json.Unmarshal(config, &c); err != nil || len(c.Tiers) == 0 {
		slog.Warn("Invalid tiered strategy config, falling back to flat rate", "error", err)
		return flatStrategy(DefaultFlatRate)
	}

	tiers := c.Tiers
	return func(price float64) float64 {
		for _, tier := range tiers[:len(tiers)-1] {
			if price >= tier.Min && price < tier.Max {
				return price * tier.Rate
			}
		}
		return price * tiers[len(tiers)-1].Rate
	}
}

// formulaStrategy compiles the expression once. Compile and per-call
// evaluation failures both degrade to the default flat rate.
func formulaStrategy(config json.RawMessage) func(float64) float64 {
	fallback := flatStrategy(DefaultFlatRate)

	var c formulaConfig
	if err := json.Unmarshal(config, &c); err != nil || c.Expression == "" {
		slog.Warn("Invalid formula strategy config, falling back to flat rate", "error", err)
		return fallback
	}

	eval, err := formulaLanguage.NewEvaluable(c.Expression)
	if err != nil {
		slog.Warn("Formula failed to compile, falling back to flat rate", "expression", c.Expression, "error", err)
		return fallback
	}

	return func(price float64) float64 {
		v, err := eval.EvalFloat64(context.Background(), map[string]interface{}{"price": price})
		if err != nil {
			slog.Warn("Formula evaluation failed, falling back to flat rate", "error", fmt.Errorf("eval: %w", err))
			return fallback(price)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback(price)
		}
		return v
	}
}
