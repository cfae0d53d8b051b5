package rules

import (
	"encoding/json"
	"testing"
)

func TestKeywordSpec_UnmarshalString(t *testing.T) {
	var f Fragment
	if err := json.Unmarshal([]byte(`{"keywords": "impact wrench"}`), &f); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Keywords.Must) != 1 || f.Keywords.Must[0] != "impact wrench" {
		t.Errorf("Expected single phrase, got %v", f.Keywords.Must)
	}
}

func TestKeywordSpec_UnmarshalList(t *testing.T) {
	var f Fragment
	if err := json.Unmarshal([]byte(`{"keywords": ["wrench", "socket"]}`), &f); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Keywords.Must) != 2 {
		t.Errorf("Expected two terms, got %v", f.Keywords.Must)
	}
}

func TestKeywordSpec_UnmarshalMustMustNot(t *testing.T) {
	var f Fragment
	payload := `{"keywords": {"must": ["wrench"], "must_not": ["toy", "replica"]}}`
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Keywords.Must) != 1 || len(f.Keywords.MustNot) != 2 {
		t.Errorf("Expected 1 must / 2 must_not, got %v / %v", f.Keywords.Must, f.Keywords.MustNot)
	}
}

func TestKeywordSpec_MalformedIsEmptyNotFatal(t *testing.T) {
	var f Fragment
	if err := json.Unmarshal([]byte(`{"keywords": 42.5}`), &f); err != nil {
		t.Fatalf("Malformed keyword shape must not be fatal: %v", err)
	}
	// Numbers coerce to their string form rather than failing
	if len(f.Keywords.Must) != 1 || f.Keywords.Must[0] != "42.5" {
		t.Errorf("Expected numeric coercion, got %v", f.Keywords.Must)
	}

	var g Fragment
	if err := json.Unmarshal([]byte(`{"keywords": true}`), &g); err != nil {
		t.Fatalf("Malformed keyword shape must not be fatal: %v", err)
	}
	if len(g.Keywords.Must) != 0 || len(g.Keywords.MustNot) != 0 {
		t.Errorf("Expected empty constraint for unusable shape, got %+v", g.Keywords)
	}
}

func TestCategorySpec_UnmarshalShapes(t *testing.T) {
	cases := []struct {
		name        string
		payload     string
		wantInclude []string
		wantExclude []string
	}{
		{"string", `{"categories": "9355"}`, []string{"9355"}, nil},
		{"numeric", `{"categories": 9355}`, []string{"9355"}, nil},
		{"list", `{"categories": ["9355", "6000"]}`, []string{"9355", "6000"}, nil},
		{"object", `{"categories": {"include": ["9355"], "exclude": ["176985"]}}`, []string{"9355"}, []string{"176985"}},
	}

	for _, tc := range cases {
		var f Fragment
		if err := json.Unmarshal([]byte(tc.payload), &f); err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if len(f.Categories.Include) != len(tc.wantInclude) {
			t.Errorf("%s: expected include %v, got %v", tc.name, tc.wantInclude, f.Categories.Include)
		}
		if len(f.Categories.Exclude) != len(tc.wantExclude) {
			t.Errorf("%s: expected exclude %v, got %v", tc.name, tc.wantExclude, f.Categories.Exclude)
		}
	}
}

func TestBrandSpec_UnmarshalObject(t *testing.T) {
	var f Fragment
	payload := `{"brands": {"include": ["DeWalt"], "exclude": ["NoName"]}}`
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.Brands.Include) != 1 || f.Brands.Include[0] != "DeWalt" {
		t.Errorf("Expected brand include, got %v", f.Brands.Include)
	}
	if len(f.Brands.Exclude) != 1 {
		t.Errorf("Expected brand exclude, got %v", f.Brands.Exclude)
	}
}
