package rules

// Merge folds an ordered list of fragments (priority ascending) plus an
// optional caller overlay into one effective rule set. Later fragments
// can only narrow the price band, never widen it; list constraints are
// unioned; seller thresholds take the stricter value. The explicit-content
// exclusion is forced on at the end regardless of inputs: it is a policy
// floor, not a per-fragment toggle.
func Merge(fragments []Fragment, overlay *Fragment) EffectiveRuleSet {
	var rs EffectiveRuleSet

	for i := range fragments {
		mergeFragment(&rs, &fragments[i])
	}
	if overlay != nil {
		mergeFragment(&rs, overlay)
	}

	rs.ExcludeExplicit = true

	return rs
}

func mergeFragment(rs *EffectiveRuleSet, f *Fragment) {
	rs.MustKeywords = unionStrings(rs.MustKeywords, f.Keywords.Must)
	rs.MustNotKeywords = unionStrings(rs.MustNotKeywords, f.Keywords.MustNot)
	rs.IncludeCategories = unionStrings(rs.IncludeCategories, f.Categories.Include)
	rs.ExcludeCategories = unionStrings(rs.ExcludeCategories, f.Categories.Exclude)
	rs.IncludeBrands = unionStrings(rs.IncludeBrands, f.Brands.Include)
	rs.ExcludeBrands = unionStrings(rs.ExcludeBrands, f.Brands.Exclude)
	rs.Conditions = unionStrings(rs.Conditions, f.Conditions)

	rs.Price = intersectBands(rs.Price, f.Price)

	if f.MinFeedbackScore != nil && (rs.MinFeedbackScore == nil || *f.MinFeedbackScore > *rs.MinFeedbackScore) {
		v := *f.MinFeedbackScore
		rs.MinFeedbackScore = &v
	}
	if f.MinPositivePercent != nil && (rs.MinPositivePercent == nil || *f.MinPositivePercent > *rs.MinPositivePercent) {
		v := *f.MinPositivePercent
		rs.MinPositivePercent = &v
	}
	if f.MaxHandlingDays != nil && (rs.MaxHandlingDays == nil || *f.MaxHandlingDays < *rs.MaxHandlingDays) {
		v := *f.MaxHandlingDays
		rs.MaxHandlingDays = &v
	}

	rs.FreeShippingOnly = rs.FreeShippingOnly || f.FreeShippingOnly
	rs.BuyItNowOnly = rs.BuyItNowOnly || f.BuyItNowOnly
	rs.ExcludeExplicit = rs.ExcludeExplicit || f.ExcludeExplicit

	if f.SpecialMode != "" {
		rs.SpecialMode = f.SpecialMode
	}
}

// intersectBands narrows a price band: the merged minimum is the highest
// minimum seen, the merged maximum the lowest maximum.
func intersectBands(a, b PriceBand) PriceBand {
	out := a
	if b.Min != nil && (out.Min == nil || *b.Min > *out.Min) {
		v := *b.Min
		out.Min = &v
	}
	if b.Max != nil && (out.Max == nil || *b.Max < *out.Max) {
		v := *b.Max
		out.Max = &v
	}
	return out
}

// unionStrings appends elements of add not already present in base,
// preserving first-seen order.
func unionStrings(base, add []string) []string {
	if len(add) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}
