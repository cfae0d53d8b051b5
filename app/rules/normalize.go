package rules

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// Stored fragment payloads are duck typed: keywords and categories arrive
// as a bare string, a list, or a structured include/exclude object,
// depending on which generation of the admin tooling wrote them. Each
// spec type normalizes its own shape here so the merge and adapter code
// never has to type-switch. Malformed shapes degrade to an empty
// constraint and are logged, never fatal.

func (k *KeywordSpec) UnmarshalJSON(data []byte) error {
	*k = KeywordSpec{}

	if terms, ok := asStringList(data); ok {
		k.Must = terms
		return nil
	}

	var obj struct {
		Must    json.RawMessage `json:"must"`
		MustNot json.RawMessage `json:"must_not"`
		Include json.RawMessage `json:"include"`
		Exclude json.RawMessage `json:"exclude"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if terms, ok := asStringList(obj.Must); ok {
			k.Must = terms
		} else if terms, ok := asStringList(obj.Include); ok {
			k.Must = terms
		}
		if terms, ok := asStringList(obj.MustNot); ok {
			k.MustNot = terms
		} else if terms, ok := asStringList(obj.Exclude); ok {
			k.MustNot = terms
		}
		return nil
	}

	slog.Warn("Malformed keyword constraint, treating as empty", "payload", truncate(data, 120))
	return nil
}

func (c *CategorySpec) UnmarshalJSON(data []byte) error {
	*c = CategorySpec{}

	if ids, ok := asStringList(data); ok {
		c.Include = ids
		return nil
	}

	var obj struct {
		Include json.RawMessage `json:"include"`
		Exclude json.RawMessage `json:"exclude"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if ids, ok := asStringList(obj.Include); ok {
			c.Include = ids
		}
		if ids, ok := asStringList(obj.Exclude); ok {
			c.Exclude = ids
		}
		return nil
	}

	slog.Warn("Malformed category constraint, treating as empty", "payload", truncate(data, 120))
	return nil
}

func (b *BrandSpec) UnmarshalJSON(data []byte) error {
	*b = BrandSpec{}

	if brands, ok := asStringList(data); ok {
		b.Include = brands
		return nil
	}

	var obj struct {
		Include json.RawMessage `json:"include"`
		Exclude json.RawMessage `json:"exclude"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if brands, ok := asStringList(obj.Include); ok {
			b.Include = brands
		}
		if brands, ok := asStringList(obj.Exclude); ok {
			b.Exclude = brands
		}
		return nil
	}

	slog.Warn("Malformed brand constraint, treating as empty", "payload", truncate(data, 120))
	return nil
}

// asStringList coerces a scalar string/number or a list of them into a
// trimmed, non-empty string slice.
func asStringList(data json.RawMessage) ([]string, bool) {
	if len(data) == 0 || string(data) == "null" {
		return nil, false
	}

	if s, ok := asString(data); ok {
		if s == "" {
			return nil, true
		}
		return []string{s}, true
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(raw))
	for _, el := range raw {
		if s, ok := asString(el); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

func asString(data json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
