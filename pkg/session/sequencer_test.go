package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bastiangx/typeahead/pkg/suggest"
)

func list(keys ...string) []suggest.Suggestion {
	out := make([]suggest.Suggestion, len(keys))
	for i, k := range keys {
		out[i] = suggest.Suggestion{Key: k, Text: k, Display: k}
	}
	return out
}

// staticProvider answers from a fixed table and fails for unknown queries
// starting with "@bad".
func staticProvider(table map[string][]suggest.Suggestion) suggest.Provider {
	return suggest.ProviderFunc(func(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
		if len(query) >= 4 && query[:4] == "@bad" {
			return nil, errors.New("lookup failed")
		}
		return table[query], nil
	})
}

func keysOf(sugs []suggest.Suggestion) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Key
	}
	return out
}

func sameKeys(got []suggest.Suggestion, want ...string) bool {
	return fmt.Sprint(keysOf(got)) == fmt.Sprint(want)
}

func TestSequencerLatestWins(t *testing.T) {
	gates := map[string]chan struct{}{
		"@a":  make(chan struct{}),
		"@ab": make(chan struct{}),
	}
	results := map[string][]suggest.Suggestion{
		"@a":  list("@alice", "@adam"),
		"@ab": list("@abby"),
	}
	provider := suggest.ProviderFunc(func(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
		<-gates[query]
		return results[query], nil
	})

	changes := make(chan State, 32)
	seq := NewSequencer(provider, DefaultOptions(), func(st State) { changes <- st })
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.SetQuery(ctx, "@ab")

	close(gates["@ab"])
	timeout := time.After(2 * time.Second)
	for resolved := false; !resolved; {
		select {
		case st := <-changes:
			resolved = st.Query == "@ab" && !st.Fetching
		case <-timeout:
			t.Fatal("second query never resolved")
		}
	}

	close(gates["@a"])
	seq.Wait()

	st := seq.State()
	if st.Query != "@ab" || !sameKeys(st.Suggestions, "@abby") {
		t.Errorf("state after stale resolution = %q %v, want \"@ab\" [@abby]", st.Query, keysOf(st.Suggestions))
	}
	if st.Selected != 0 {
		t.Errorf("Selected = %d, want 0", st.Selected)
	}
}

func TestSequencerEmptyQueryClears(t *testing.T) {
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice", "@adam", "@amy"),
	}), DefaultOptions(), nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	if st := seq.State(); len(st.Suggestions) != 3 || st.Selected != 0 {
		t.Fatalf("after @a: %v selected %d", keysOf(st.Suggestions), st.Selected)
	}

	seq.SetQuery(ctx, "")
	st := seq.State()
	if len(st.Suggestions) != 0 || st.Selected != -1 || st.Query != "" || st.Fetching {
		t.Errorf("after empty query: %+v", st)
	}
}

func TestSequencerEmptyQueryDiscardsInflight(t *testing.T) {
	gate := make(chan struct{})
	provider := suggest.ProviderFunc(func(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
		<-gate
		return list("@alice"), nil
	})
	seq := NewSequencer(provider, DefaultOptions(), nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	if !seq.State().Fetching {
		t.Error("expected Fetching while the lookup is outstanding")
	}
	seq.SetQuery(ctx, "")
	close(gate)
	seq.Wait()

	if st := seq.State(); len(st.Suggestions) != 0 || st.Selected != -1 {
		t.Errorf("stale lookup leaked into cleared state: %+v", st)
	}
}

func TestSequencerWrapAround(t *testing.T) {
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice", "@adam", "@amy"),
	}), DefaultOptions(), nil)
	seq.SetQuery(context.Background(), "@a")
	seq.Wait()

	steps := []struct {
		move func()
		want int
	}{
		{seq.MoveUp, 2},
		{seq.MoveDown, 0},
		{seq.MoveDown, 1},
		{seq.MoveDown, 2},
		{seq.MoveDown, 0},
	}
	for i, step := range steps {
		step.move()
		if got := seq.State().Selected; got != step.want {
			t.Errorf("step %d: Selected = %d, want %d", i, got, step.want)
		}
	}
}

func TestSequencerClampAtEdges(t *testing.T) {
	opts := DefaultOptions()
	opts.WrapAround = false
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice", "@adam", "@amy"),
	}), opts, nil)
	seq.SetQuery(context.Background(), "@a")
	seq.Wait()

	seq.MoveUp()
	if got := seq.State().Selected; got != 0 {
		t.Errorf("MoveUp at 0 = %d, want 0", got)
	}
	for range 5 {
		seq.MoveDown()
	}
	if got := seq.State().Selected; got != 2 {
		t.Errorf("MoveDown past end = %d, want 2", got)
	}
}

func TestSequencerMoveFromNoSelection(t *testing.T) {
	table := map[string][]suggest.Suggestion{"@a": list("@alice", "@adam", "@amy")}
	testCases := []struct {
		name string
		wrap bool
		up   bool
		want int
	}{
		{"down", true, false, 0},
		{"up wraps to last", true, true, 2},
		{"up clamps to first", false, true, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AutoSelectFirst = false
			opts.WrapAround = tc.wrap
			seq := NewSequencer(staticProvider(table), opts, nil)
			seq.SetQuery(context.Background(), "@a")
			seq.Wait()
			if got := seq.State().Selected; got != -1 {
				t.Fatalf("Selected before moving = %d, want -1", got)
			}
			if tc.up {
				seq.MoveUp()
			} else {
				seq.MoveDown()
			}
			if got := seq.State().Selected; got != tc.want {
				t.Errorf("Selected = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSequencerMoveOnEmptyList(t *testing.T) {
	calls := 0
	seq := NewSequencer(staticProvider(nil), DefaultOptions(), func(State) { calls++ })
	seq.MoveUp()
	seq.MoveDown()
	if st := seq.State(); st.Selected != -1 {
		t.Errorf("Selected = %d, want -1", st.Selected)
	}
	if calls != 0 {
		t.Errorf("onChange called %d times for no-op moves", calls)
	}
}

func TestSequencerClampSelection(t *testing.T) {
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a":   list("@a1", "@a2", "@a3", "@a4", "@a5"),
		"@ab":  list("@ab1", "@ab2"),
		"@abc": list("@abc1", "@abc2", "@abc3", "@abc4"),
	}), DefaultOptions(), nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	seq.MoveDown()
	if got := seq.State().Selected; got != 1 {
		t.Fatalf("Selected = %d, want 1", got)
	}

	seq.SetQuery(ctx, "@abc")
	seq.Wait()
	if got := seq.State().Selected; got != 1 {
		t.Errorf("index should be preserved: Selected = %d, want 1", got)
	}

	seq.MoveDown()
	seq.MoveDown()
	seq.SetQuery(ctx, "@ab")
	seq.Wait()
	if got := seq.State().Selected; got != 1 {
		t.Errorf("index should clamp to last: Selected = %d, want 1", got)
	}
}

func TestSequencerKeepsSelectedKey(t *testing.T) {
	opts := DefaultOptions()
	opts.ClampSelection = false
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a":   list("@adam", "@alice", "@amy"),
		"@al":  list("@alex", "@alan", "@alice"),
		"@ali": list("@alina"),
	}), opts, nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	seq.MoveDown()
	if sel, _ := seq.State().Selection(); sel.Key != "@alice" {
		t.Fatalf("selected %q, want @alice", sel.Key)
	}

	seq.SetQuery(ctx, "@al")
	seq.Wait()
	st := seq.State()
	if sel, _ := st.Selection(); sel.Key != "@alice" || st.Selected != 2 {
		t.Errorf("selected %q at %d, want @alice at 2", sel.Key, st.Selected)
	}

	seq.SetQuery(ctx, "@ali")
	seq.Wait()
	if got := seq.State().Selected; got != 0 {
		t.Errorf("missing key should fall back to clamped index: Selected = %d, want 0", got)
	}
}

func TestSequencerErrorKeepsSuggestions(t *testing.T) {
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice", "@adam"),
	}), DefaultOptions(), nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	seq.MoveDown()

	seq.SetQuery(ctx, "@bad")
	seq.Wait()

	st := seq.State()
	if !sameKeys(st.Suggestions, "@alice", "@adam") || st.Selected != 1 {
		t.Errorf("failed lookup changed suggestions: %v selected %d", keysOf(st.Suggestions), st.Selected)
	}
	if st.Fetching {
		t.Error("Fetching should clear after a failed lookup")
	}
}

func TestSequencerLimit(t *testing.T) {
	var many []string
	for i := range 20 {
		many = append(many, fmt.Sprintf("@u%02d", i))
	}
	opts := DefaultOptions()
	opts.Limit = 3
	seq := NewSequencer(staticProvider(map[string][]suggest.Suggestion{"@u": list(many...)}), opts, nil)

	seq.SetQuery(context.Background(), "@u")
	seq.Wait()
	if got := len(seq.State().Suggestions); got != 3 {
		t.Errorf("len(Suggestions) = %d, want 3", got)
	}
}

func TestSequencerClose(t *testing.T) {
	gate := make(chan struct{})
	provider := suggest.ProviderFunc(func(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
		<-gate
		return list("@alice"), nil
	})
	seq := NewSequencer(provider, DefaultOptions(), nil)
	seq.SetQuery(context.Background(), "@a")
	seq.Close()
	close(gate)
	seq.Wait()

	if st := seq.State(); len(st.Suggestions) != 0 {
		t.Errorf("closed sequencer accepted results: %v", keysOf(st.Suggestions))
	}
	seq.SetQuery(context.Background(), "@b")
	if st := seq.State(); st.Query != "@a" {
		t.Errorf("closed sequencer accepted a query: %q", st.Query)
	}
}

// finishes fails the test unless fn returns within two seconds.
func finishes(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never returned", what)
	}
}

func TestSequencerOnChangeMayMove(t *testing.T) {
	var seq *Sequencer
	var moved atomic.Bool
	seq = NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice", "@adam", "@amy"),
	}), DefaultOptions(), func(st State) {
		if !st.Fetching && len(st.Suggestions) > 0 && moved.CompareAndSwap(false, true) {
			seq.MoveDown()
		}
	})

	finishes(t, "SetQuery with MoveDown in onChange", func() {
		seq.SetQuery(context.Background(), "@a")
		seq.Wait()
	})
	if st := seq.State(); st.Selected != 1 {
		t.Errorf("Selected = %d, want 1", st.Selected)
	}
}

func TestSequencerOnChangeMayReset(t *testing.T) {
	var seq *Sequencer
	var reset atomic.Bool
	var last atomic.Value
	seq = NewSequencer(staticProvider(map[string][]suggest.Suggestion{
		"@a": list("@alice"),
	}), DefaultOptions(), func(st State) {
		last.Store(st)
		if st.Fetching && reset.CompareAndSwap(false, true) {
			seq.Reset()
		}
	})

	finishes(t, "SetQuery with Reset in onChange", func() {
		seq.SetQuery(context.Background(), "@a")
		seq.Wait()
	})
	if st := seq.State(); st.Query != "" || len(st.Suggestions) != 0 || st.Fetching {
		t.Errorf("state after Reset = %+v", st)
	}
	if st := last.Load().(State); st.Query != "" || st.Fetching {
		t.Errorf("last delivered state = %+v, want the cleared one", st)
	}
}

func TestSequencerRetriesFailedQuery(t *testing.T) {
	var calls atomic.Int32
	provider := suggest.ProviderFunc(func(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("lookup failed")
		}
		return list("@alice"), nil
	})
	seq := NewSequencer(provider, DefaultOptions(), nil)
	ctx := context.Background()

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	if st := seq.State(); len(st.Suggestions) != 0 {
		t.Fatalf("failed lookup produced suggestions: %v", keysOf(st.Suggestions))
	}

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	if st := seq.State(); !sameKeys(st.Suggestions, "@alice") {
		t.Errorf("retry = %v, want [@alice]", keysOf(st.Suggestions))
	}

	seq.SetQuery(ctx, "@a")
	seq.Wait()
	if n := calls.Load(); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}
}
