package rules

// SpecialModeRecommendedOnly short-circuits external search entirely:
// only pinned items are served.
const SpecialModeRecommendedOnly = "recommended-only"

// PriceBand is a half-open price constraint. Nil means unbounded on that side.
type PriceBand struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// KeywordSpec holds keyword constraints after boundary normalization.
// It accepts a bare phrase, a list of terms, or a must/must_not object
// when decoded from a stored fragment payload.
type KeywordSpec struct {
	Must    []string `json:"must,omitempty"`
	MustNot []string `json:"must_not,omitempty"`
}

// CategorySpec holds category constraints after boundary normalization.
// Accepts a bare id, a list of ids, or an include/exclude object.
type CategorySpec struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// BrandSpec holds brand constraints after boundary normalization.
type BrandSpec struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Fragment is one prioritized configuration unit as stored by the
// configuration store. Fragments are immutable once read; merging
// happens on copies.
type Fragment struct {
	Keywords           KeywordSpec  `json:"keywords,omitempty"`
	Categories         CategorySpec `json:"categories,omitempty"`
	Brands             BrandSpec    `json:"brands,omitempty"`
	Price              PriceBand    `json:"price,omitempty"`
	Conditions         []string     `json:"conditions,omitempty"`
	FreeShippingOnly   bool         `json:"free_shipping_only,omitempty"`
	MaxHandlingDays    *int         `json:"max_handling_days,omitempty"`
	MinFeedbackScore   *int         `json:"min_feedback_score,omitempty"`
	MinPositivePercent *float64     `json:"min_positive_percent,omitempty"`
	BuyItNowOnly       bool         `json:"buy_it_now_only,omitempty"`
	ExcludeExplicit    bool         `json:"exclude_explicit,omitempty"`
	SpecialMode        string       `json:"special_mode,omitempty"`
}

// EffectiveRuleSet is the single merged result of one or more fragments
// plus an optional caller overlay. Transient, recomputed per request.
type EffectiveRuleSet struct {
	MustKeywords       []string  `json:"must_keywords,omitempty"`
	MustNotKeywords    []string  `json:"must_not_keywords,omitempty"`
	IncludeCategories  []string  `json:"include_categories,omitempty"`
	ExcludeCategories  []string  `json:"exclude_categories,omitempty"`
	IncludeBrands      []string  `json:"include_brands,omitempty"`
	ExcludeBrands      []string  `json:"exclude_brands,omitempty"`
	Price              PriceBand `json:"price,omitempty"`
	Conditions         []string  `json:"conditions,omitempty"`
	FreeShippingOnly   bool      `json:"free_shipping_only,omitempty"`
	MaxHandlingDays    *int      `json:"max_handling_days,omitempty"`
	MinFeedbackScore   *int      `json:"min_feedback_score,omitempty"`
	MinPositivePercent *float64  `json:"min_positive_percent,omitempty"`
	BuyItNowOnly       bool      `json:"buy_it_now_only,omitempty"`
	ExcludeExplicit    bool      `json:"exclude_explicit"`
	SpecialMode        string    `json:"special_mode,omitempty"`
}

// HasQueryTerms reports whether the rule set carries at least one of the
// constraints the upstream search requires (keyword or category include).
func (rs *EffectiveRuleSet) HasQueryTerms() bool {
	return len(rs.MustKeywords) > 0 || len(rs.IncludeCategories) > 0
}
