package rules

import (
	"sort"
	"testing"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestMerge_PriceBandIntersection(t *testing.T) {
	rs := Merge([]Fragment{
		{Price: PriceBand{Min: fptr(10)}},
		{Price: PriceBand{Max: fptr(50)}},
	}, nil)

	if rs.Price.Min == nil || *rs.Price.Min != 10 {
		t.Errorf("Expected min 10, got %v", rs.Price.Min)
	}
	if rs.Price.Max == nil || *rs.Price.Max != 50 {
		t.Errorf("Expected max 50, got %v", rs.Price.Max)
	}
}

func TestMerge_PriceBandNeverWidens(t *testing.T) {
	rs := Merge([]Fragment{
		{Price: PriceBand{Max: fptr(50)}},
		{Price: PriceBand{Max: fptr(30)}},
	}, nil)

	if rs.Price.Max == nil || *rs.Price.Max != 30 {
		t.Errorf("Expected max 30 (narrower wins), got %v", rs.Price.Max)
	}

	// Reversed order must give the same result
	rs = Merge([]Fragment{
		{Price: PriceBand{Max: fptr(30)}},
		{Price: PriceBand{Max: fptr(50)}},
	}, nil)

	if rs.Price.Max == nil || *rs.Price.Max != 30 {
		t.Errorf("Expected max 30 regardless of order, got %v", rs.Price.Max)
	}
}

func TestMerge_CategoryUnion(t *testing.T) {
	rs := Merge([]Fragment{
		{Categories: CategorySpec{Include: []string{"A", "B"}}},
		{Categories: CategorySpec{Include: []string{"B", "C"}}},
	}, nil)

	got := append([]string(nil), rs.IncludeCategories...)
	sort.Strings(got)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestMerge_SafetyFloorAlwaysSet(t *testing.T) {
	cases := [][]Fragment{
		nil,
		{{ExcludeExplicit: false}},
		{{ExcludeExplicit: true}, {ExcludeExplicit: false}},
		{{Keywords: KeywordSpec{Must: []string{"wrench"}}}},
	}

	for i, fragments := range cases {
		rs := Merge(fragments, nil)
		if !rs.ExcludeExplicit {
			t.Errorf("Case %d: explicit-content exclusion must always be forced on", i)
		}
	}
}

func TestMerge_EmptyInputYieldsSafetyFloorOnly(t *testing.T) {
	rs := Merge(nil, nil)

	if !rs.ExcludeExplicit {
		t.Error("Empty merge should still set the safety floor")
	}
	if rs.HasQueryTerms() {
		t.Error("Empty merge should carry no keyword or category constraint")
	}
}

func TestMerge_SellerThresholdsStricterWins(t *testing.T) {
	rs := Merge([]Fragment{
		{MinFeedbackScore: iptr(100), MaxHandlingDays: iptr(5)},
		{MinFeedbackScore: iptr(500), MaxHandlingDays: iptr(3)},
	}, nil)

	if rs.MinFeedbackScore == nil || *rs.MinFeedbackScore != 500 {
		t.Errorf("Expected feedback score 500, got %v", rs.MinFeedbackScore)
	}
	if rs.MaxHandlingDays == nil || *rs.MaxHandlingDays != 3 {
		t.Errorf("Expected handling days 3, got %v", rs.MaxHandlingDays)
	}
}

func TestMerge_BooleanFlagsOr(t *testing.T) {
	rs := Merge([]Fragment{
		{FreeShippingOnly: true},
		{BuyItNowOnly: true},
	}, nil)

	if !rs.FreeShippingOnly {
		t.Error("free_shipping_only should survive the merge")
	}
	if !rs.BuyItNowOnly {
		t.Error("buy_it_now_only should survive the merge")
	}
}

func TestMerge_OverlayNarrows(t *testing.T) {
	rs := Merge([]Fragment{
		{Price: PriceBand{Max: fptr(100)}, Categories: CategorySpec{Include: []string{"9355"}}},
	}, &Fragment{
		Price:    PriceBand{Min: fptr(20), Max: fptr(200)},
		Keywords: KeywordSpec{Must: []string{"charger"}},
	})

	if rs.Price.Max == nil || *rs.Price.Max != 100 {
		t.Errorf("Overlay must not widen the band, got max %v", rs.Price.Max)
	}
	if rs.Price.Min == nil || *rs.Price.Min != 20 {
		t.Errorf("Expected overlay min 20, got %v", rs.Price.Min)
	}
	if len(rs.MustKeywords) != 1 || rs.MustKeywords[0] != "charger" {
		t.Errorf("Expected overlay keyword, got %v", rs.MustKeywords)
	}
}

func TestMerge_SpecialModePropagates(t *testing.T) {
	rs := Merge([]Fragment{
		{Keywords: KeywordSpec{Must: []string{"tools"}}},
		{SpecialMode: SpecialModeRecommendedOnly},
	}, nil)

	if rs.SpecialMode != SpecialModeRecommendedOnly {
		t.Errorf("Expected special mode to propagate, got %q", rs.SpecialMode)
	}
}
