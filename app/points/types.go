package points

import "encoding/json"

type Strategy string

const (
	StrategyFlat    Strategy = "flat"
	StrategyTiered  Strategy = "tiered"
	StrategyFormula Strategy = "formula"
)

type Rounding string

const (
	RoundingNone      Rounding = "none"
	RoundingNearest10 Rounding = "nearest_10"
	RoundingNearest25 Rounding = "nearest_25"
	RoundingUp10      Rounding = "up_10"
)

// DefaultFlatRate is the fallback points-per-currency-unit rate used when
// no policy and no scope ratio is configured, and when a formula strategy
// fails to evaluate.
const DefaultFlatRate = 100.0

// Policy is the per-scope conversion configuration. At most one exists
// per scope; absence implies a derived flat-rate fallback.
type Policy struct {
	Strategy  Strategy        `json:"strategy"`
	Config    json.RawMessage `json:"config,omitempty"`
	MinPoints *int64          `json:"min_points,omitempty"`
	MaxPoints *int64          `json:"max_points,omitempty"`
	Rounding  Rounding        `json:"rounding,omitempty"`
}

type flatConfig struct {
	Rate float64 `json:"rate"`
}

type tierConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Rate float64 `json:"rate"`
}

type tieredConfig struct {
	Tiers []tierConfig `json:"tiers"`
}

type formulaConfig struct {
	Expression string `json:"expression"`
}
