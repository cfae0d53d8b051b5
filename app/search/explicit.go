package search

// adultCategoryIDs is the upstream denylist applied whenever the merged
// rule set carries the explicit-content exclusion. Ids on this list are
// silently dropped from the query and screened again in the post-filter,
// since curated pseudo-categories can expand into them.
var adultCategoryIDs = map[string]struct{}{
	"176984": {},
	"176985": {},
	"176986": {},
	"176988": {},
	"176990": {},
	"319":    {},
}

// explicitTerms is the text screen companion to the category denylist.
// Matching is case-folded substring containment against the item title.
var explicitTerms = []string{
	"adult only",
	"adults only",
	"explicit",
	"nsfw",
	"x-rated",
	"xxx",
}
