package engine

import (
	"encoding/json"
	"strings"

	"teamline/internal/domain"
)

// ParseRules decodes a user's stored assignment rules. The column holds
// operator-supplied text, so anything that is not a JSON list of objects
// yields an empty rule set rather than an error: a user with unreadable
// rules simply matches nothing.
func ParseRules(raw *string) []domain.Rule {
	if raw == nil {
		return nil
	}
	text := strings.TrimSpace(*raw)
	if text == "" {
		return nil
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil
	}
	rules := make([]domain.Rule, 0, len(items))
	for _, item := range items {
		var r domain.Rule
		if v, ok := item["skill"]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil {
				r.Skill = s
			}
		}
		if v, ok := item["type_id"]; ok {
			if id, ok := coerceInt64(v); ok {
				r.TypeID = &id
			}
		}
		if v, ok := item["priority"]; ok {
			if p, ok := coerceFloat64(v); ok {
				r.Priority = &p
			}
		}
		rules = append(rules, r)
	}
	return rules
}

// coerceInt64 accepts both numeric and string-encoded values, since rule
// payloads imported from other trackers quote their ids.
func coerceInt64(raw json.RawMessage) (int64, bool) {
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		var m int64
		if json.Unmarshal([]byte(strings.TrimSpace(s)), &m) == nil {
			return m, true
		}
	}
	return 0, false
}

func coerceFloat64(raw json.RawMessage) (float64, bool) {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		var g float64
		if json.Unmarshal([]byte(strings.TrimSpace(s)), &g) == nil {
			return g, true
		}
	}
	return 0, false
}

// SplitSkills tokenizes a required-skills string: lowercase, split on
// commas and whitespace, empties dropped.
func SplitSkills(raw *string) []string {
	if raw == nil {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(*raw), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	var tokens []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
