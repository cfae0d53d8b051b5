package rules

import "sort"

// Canonical returns a copy of the rule set with all set-valued fields
// sorted, so that two rule sets that are equal as sets serialize to the
// same bytes. Used for cache fingerprinting.
func (rs EffectiveRuleSet) Canonical() EffectiveRuleSet {
	rs.MustKeywords = sortedCopy(rs.MustKeywords)
	rs.MustNotKeywords = sortedCopy(rs.MustNotKeywords)
	rs.IncludeCategories = sortedCopy(rs.IncludeCategories)
	rs.ExcludeCategories = sortedCopy(rs.ExcludeCategories)
	rs.IncludeBrands = sortedCopy(rs.IncludeBrands)
	rs.ExcludeBrands = sortedCopy(rs.ExcludeBrands)
	rs.Conditions = sortedCopy(rs.Conditions)
	return rs
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
