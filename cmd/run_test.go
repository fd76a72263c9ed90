package cmd

import (
	"testing"

	"github.com/signalnine/benchlit/internal/config"
)

func TestFilterTests(t *testing.T) {
	tests := []config.Test{
		{Name: "decode-nef", Run: []string{"./rsbench a.nef"}},
		{Name: "decode-nef-profiled", Run: []string{"./rsbench a.nef"}},
		{Name: "smoke", Run: []string{"true"}},
	}

	cases := []struct {
		name    string
		pattern string
		want    int
	}{
		{"empty filter returns all", "", 3},
		{"exact match", "smoke", 1},
		{"exact match is not a prefix match", "decode-nef", 1},
		{"prefix wildcard", "decode-*", 2},
		{"bare wildcard", "*", 3},
		{"no match", "encode", 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := filterTests(tests, tt.pattern)
			if len(got) != tt.want {
				t.Errorf("filterTests(%q) returned %d, want %d", tt.pattern, len(got), tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" rsbench, ,profile ")
	if len(got) != 2 || got[0] != "rsbench" || got[1] != "profile" {
		t.Errorf("splitList = %q", got)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %q, want nil", got)
	}
}
