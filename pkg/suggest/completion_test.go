package suggest

import (
	"context"
	"slices"
	"testing"
)

func texts(sugs []Suggestion) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Text
	}
	return out
}

func newTestCompleter() *Completer {
	c := NewCompleter('@', "mentions")
	c.AddWord("joan", 100)
	c.AddWord("john", 300)
	c.AddWord("jonas", 50)
	c.AddWord("@bob", 200)
	return c
}

func TestCompleterSuggest(t *testing.T) {
	c := newTestCompleter()
	ctx := context.Background()

	testCases := []struct {
		query string
		limit int
		want  []string
	}{
		{"@jo", 10, []string{"@john", "@joan", "@jonas"}},
		{"@jo", 1, []string{"@john"}},
		{"@Jo", 10, []string{"@John", "@Joan", "@Jonas"}},
		{"@", 10, []string{"@john", "@bob", "@joan", "@jonas"}},
		{"@JON", 10, []string{"@JONas"}},
		{"@x", 10, []string{}},
		{":jo", 10, []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			got, err := c.Suggest(ctx, tc.query, tc.limit)
			if err != nil {
				t.Fatalf("Suggest(%q) error: %v", tc.query, err)
			}
			if !slices.Equal(texts(got), tc.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tc.query, texts(got), tc.want)
			}
		})
	}
}

func TestCompleterKeysIgnoreCase(t *testing.T) {
	c := newTestCompleter()
	got, _ := c.Suggest(context.Background(), "@JOH", 10)
	if len(got) != 1 || got[0].Key != "@john" || got[0].Source != "mentions" || got[0].Frequency != 300 {
		t.Errorf("Suggest(@JOH) = %+v", got)
	}
}

func TestCompleterThresholds(t *testing.T) {
	c := newTestCompleter()
	c.SetThresholds(0, 150)
	ctx := context.Background()

	got, _ := c.Suggest(ctx, "@jo", 10)
	if want := []string{"@john"}; !slices.Equal(texts(got), want) {
		t.Errorf("short query = %v, want %v", texts(got), want)
	}

	got, _ = c.Suggest(ctx, "@jon", 10)
	if want := []string{"@jonas"}; !slices.Equal(texts(got), want) {
		t.Errorf("long query = %v, want %v", texts(got), want)
	}
}

func TestCompleterAddWordRaisesFrequency(t *testing.T) {
	c := newTestCompleter()
	c.AddWord("JOAN", 400)
	c.AddWord("joan", 10)

	got, _ := c.Suggest(context.Background(), "@jo", 10)
	if want := []string{"@joan", "@john", "@jonas"}; !slices.Equal(texts(got), want) {
		t.Errorf("Suggest = %v, want %v", texts(got), want)
	}

	stats := c.Stats()
	if stats["totalWords"] != 4 || stats["maxFrequency"] != 400 {
		t.Errorf("Stats() = %v", stats)
	}

	c.Reset()
	if stats := c.Stats(); stats["totalWords"] != 0 {
		t.Errorf("Stats() after Reset = %v", stats)
	}
}

func TestCompleterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestCompleter().Suggest(ctx, "@jo", 10); err == nil {
		t.Error("Suggest with cancelled context returned no error")
	}
}

func TestApplyCapitalization(t *testing.T) {
	testCases := []struct {
		word      string
		positions []bool
		want      string
	}{
		{"john", nil, "john"},
		{"john", []bool{true}, "John"},
		{"john", []bool{true, false, true, false, true}, "JoHn"},
		{"DeShawn", []bool{false, false}, "DeShawn"},
		{"élan", []bool{true}, "élan"},
	}
	for _, tc := range testCases {
		if got := ApplyCapitalization(tc.word, tc.positions); got != tc.want {
			t.Errorf("ApplyCapitalization(%q, %v) = %q, want %q", tc.word, tc.positions, got, tc.want)
		}
	}
}
