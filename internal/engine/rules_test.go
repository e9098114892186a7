package engine_test

import (
	"reflect"
	"testing"

	"teamline/internal/engine"
)

func strptr(s string) *string { return &s }

func TestParseRulesDefensive(t *testing.T) {
	cases := []struct {
		name string
		raw  *string
		want int
	}{
		{"nil field", nil, 0},
		{"empty string", strptr(""), 0},
		{"whitespace", strptr("   "), 0},
		{"invalid text", strptr("not-json"), 0},
		{"object not list", strptr(`{"skill":"go"}`), 0},
		{"valid list", strptr(`[{"skill":"go"},{"type_id":3}]`), 2},
		{"empty list", strptr(`[]`), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.ParseRules(tc.raw)
			if len(got) != tc.want {
				t.Fatalf("len = %d, want %d", len(got), tc.want)
			}
		})
	}
}

func TestParseRulesCoercesQuotedNumbers(t *testing.T) {
	raw := strptr(`[{"skill":"go","type_id":"42","priority":"2.5"}]`)
	rules := engine.ParseRules(raw)
	if len(rules) != 1 {
		t.Fatalf("len = %d, want 1", len(rules))
	}
	r := rules[0]
	if r.Skill != "go" {
		t.Fatalf("skill = %q", r.Skill)
	}
	if r.TypeID == nil || *r.TypeID != 42 {
		t.Fatalf("type_id = %v, want 42", r.TypeID)
	}
	if r.Priority == nil || *r.Priority != 2.5 {
		t.Fatalf("priority = %v, want 2.5", r.Priority)
	}
}

func TestParseRulesDropsUnreadableFields(t *testing.T) {
	raw := strptr(`[{"skill":"go","type_id":"frontend","priority":"high"}]`)
	rules := engine.ParseRules(raw)
	if len(rules) != 1 {
		t.Fatalf("len = %d, want 1", len(rules))
	}
	if rules[0].TypeID != nil || rules[0].Priority != nil {
		t.Fatalf("non-numeric fields should be dropped: %+v", rules[0])
	}
}

func TestSplitSkills(t *testing.T) {
	got := engine.SplitSkills(strptr("React, testing  golang,\nsql"))
	want := []string{"react", "testing", "golang", "sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	if engine.SplitSkills(nil) != nil {
		t.Fatalf("nil input should yield nil")
	}
	if engine.SplitSkills(strptr(" ,, ")) != nil {
		t.Fatalf("separator-only input should yield nil")
	}
}
