package store

import (
	"reflect"
	"testing"

	"github.com/roach88/ordering/internal/ordering"
)

func TestMarshalFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"nil", nil, "{}"},
		{"empty", map[string]string{}, "{}"},
		{"sorted keys", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
		{"no html escaping", map[string]string{"t": "<a> & b"}, `{"t":"<a> & b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalFields(tt.fields)
			if err != nil {
				t.Fatalf("marshalFields() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalFields() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFields(t *testing.T) {
	got, err := unmarshalFields(`{"title":"Ünïcode <ok>"}`)
	if err != nil {
		t.Fatalf("unmarshalFields() error = %v", err)
	}
	if got["title"] != "Ünïcode <ok>" {
		t.Errorf("title = %q", got["title"])
	}

	for _, empty := range []string{"", "{}"} {
		got, err := unmarshalFields(empty)
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("unmarshalFields(%q) = %v, %v; want empty map", empty, got, err)
		}
	}

	if _, err := unmarshalFields("{broken"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestShiftPredicate(t *testing.T) {
	scope := ordering.Scope{Collection: "tasks", Group: ordering.GroupKey{"project": "p1"}}

	open := shiftPredicate(scope, ordering.Shift{Delta: +1, From: 2, Open: true})
	if got, want := open.SQL(), "collection = ? AND group_key = ? AND position >= ?"; got != want {
		t.Errorf("SQL() = %q, want %q", got, want)
	}
	if got, want := open.Params(), []any{"tasks", `{"project":"p1"}`, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Params() = %v, want %v", got, want)
	}

	closed := shiftPredicate(scope, ordering.Shift{Delta: -1, From: 2, To: 5})
	if got, want := closed.SQL(), "collection = ? AND group_key = ? AND position >= ? AND position <= ?"; got != want {
		t.Errorf("SQL() = %q, want %q", got, want)
	}
	if got := closed.Params(); len(got) != 4 || got[3] != 5 {
		t.Errorf("Params() = %v", got)
	}

	if got := (&predicate{}).SQL(); got != "1 = 1" {
		t.Errorf("empty predicate SQL() = %q", got)
	}
}
