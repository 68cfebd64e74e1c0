package playlist

import (
	"errors"
	"testing"

	"github.com/yasserzoho/Clementine/internal/generator"
	"github.com/yasserzoho/Clementine/internal/song"
)

// fakeGenerator deals songs from a fixed pool and records every batch size
// it was asked for.
type fakeGenerator struct {
	pool  []song.Song
	calls []int
	err   error
}

func songPool(titles ...string) []song.Song {
	songs := make([]song.Song, len(titles))
	for i, title := range titles {
		songs[i] = makeSong(title)
	}
	return songs
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(n int) ([]song.Song, error) {
	g.calls = append(g.calls, n)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.pool) == 0 {
		return nil, generator.ErrExhausted
	}
	if n > len(g.pool) {
		n = len(g.pool)
	}
	batch := g.pool[:n]
	g.pool = g.pool[n:]
	return batch, nil
}

func newDynamicPlaylist(t *testing.T) *Playlist {
	t.Helper()
	return New(1, Options{
		DynamicLookahead: 2,
		DynamicHistory:   1,
	})
}

func TestDynamic_TurnOnFillsLookahead(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3", "G4", "G5")}
	p := newDynamicPlaylist(t)
	events := collectEvents(t, p)

	p.TurnOnDynamicPlaylist(gen)

	if !p.IsDynamic() {
		t.Fatal("IsDynamic() = false")
	}
	if p.DynamicGeneratorName() != "fake" {
		t.Errorf("DynamicGeneratorName() = %q, want fake", p.DynamicGeneratorName())
	}
	// No current track: the whole playlist is lookahead.
	assertTitles(t, p, "G1", "G2")
	if len(gen.calls) != 1 || gen.calls[0] != 2 {
		t.Errorf("generator calls = %v, want [2]", gen.calls)
	}

	if len(*events) == 0 {
		t.Fatal("expected events")
	}
	if dm, ok := (*events)[0].(DynamicModeChanged); !ok || !dm.Dynamic {
		t.Errorf("first event = %#v, want DynamicModeChanged{true}", (*events)[0])
	}

	for row := 0; row < p.Len(); row++ {
		if !p.ItemAt(row).IsGenerated() {
			t.Errorf("item %d not marked generated", row)
		}
	}
	if p.CanUndo() {
		t.Error("generated inserts must bypass the undo log")
	}
}

func TestDynamic_AdvanceTopsUpAndTrims(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3", "G4", "G5", "G6", "G7")}
	p := newDynamicPlaylist(t)
	p.TurnOnDynamicPlaylist(gen)
	assertTitles(t, p, "G1", "G2")

	// Play G1: one upcoming left, top up by one.
	if err := p.SetCurrentRow(0); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "G1", "G2", "G3")
	if len(gen.calls) != 2 || gen.calls[1] != 1 {
		t.Errorf("generator calls = %v, want [2 1]", gen.calls)
	}

	// Play G2: history watermark (1) not yet exceeded.
	if err := p.SetCurrentRow(1); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "G1", "G2", "G3", "G4")

	// Play G3: two played rows sit before it, one over the watermark.
	if err := p.SetCurrentRow(2); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "G2", "G3", "G4", "G5")
	if p.CurrentRow() != 1 {
		t.Errorf("CurrentRow() = %d, want 1 after history trim", p.CurrentRow())
	}
}

func TestDynamic_ExhaustionDeactivates(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1")}
	p := newDynamicPlaylist(t)
	events := collectEvents(t, p)

	p.TurnOnDynamicPlaylist(gen)

	if p.IsDynamic() {
		t.Error("IsDynamic() = true after exhaustion")
	}
	// The one generated song stays.
	assertTitles(t, p, "G1")

	var last Event
	for _, e := range *events {
		if _, ok := e.(DynamicModeChanged); ok {
			last = e
		}
	}
	if dm, ok := last.(DynamicModeChanged); !ok || dm.Dynamic {
		t.Errorf("last mode event = %#v, want DynamicModeChanged{false}", last)
	}
}

func TestDynamic_GeneratorErrorKeepsModeOn(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}
	p := newDynamicPlaylist(t)
	events := collectEvents(t, p)

	p.TurnOnDynamicPlaylist(gen)

	if !p.IsDynamic() {
		t.Error("IsDynamic() = false; transient errors must not deactivate")
	}
	var sawLoadError bool
	for _, e := range *events {
		if _, ok := e.(LoadError); ok {
			sawLoadError = true
		}
	}
	if !sawLoadError {
		t.Error("expected a LoadError event")
	}
}

func TestDynamic_TurnOffKeepsEntries(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3")}
	p := newDynamicPlaylist(t)
	p.TurnOnDynamicPlaylist(gen)

	p.TurnOffDynamicPlaylist()

	if p.IsDynamic() {
		t.Error("IsDynamic() = true")
	}
	if p.DynamicGeneratorName() != "" {
		t.Errorf("DynamicGeneratorName() = %q, want empty", p.DynamicGeneratorName())
	}
	assertTitles(t, p, "G1", "G2")

	// Advancing no longer calls the generator.
	calls := len(gen.calls)
	if err := p.SetCurrentRow(0); err != nil {
		t.Fatal(err)
	}
	if len(gen.calls) != calls {
		t.Errorf("generator called after deactivation: %v", gen.calls)
	}
}

func TestDynamic_Repopulate(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3", "G4", "G5")}
	p := newDynamicPlaylist(t)
	p.TurnOnDynamicPlaylist(gen)
	if err := p.SetCurrentRow(0); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "G1", "G2", "G3")

	p.RepopulateDynamicPlaylist()

	// The un-played tail (G2, G3) is replaced by a fresh batch.
	assertTitles(t, p, "G1", "G4", "G5")
	if p.CurrentRow() != 0 {
		t.Errorf("CurrentRow() = %d, want 0", p.CurrentRow())
	}
}

func TestDynamic_StaticEntriesSurviveTopUp(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3")}
	p := newDynamicPlaylist(t)
	fillPlaylist(p, "A", "B")

	p.TurnOnDynamicPlaylist(gen)

	// Lookahead already satisfied by the static entries.
	assertTitles(t, p, "A", "B")
	if len(gen.calls) != 0 {
		t.Errorf("generator calls = %v, want none", gen.calls)
	}

	if err := p.SetCurrentRow(0); err != nil {
		t.Fatal(err)
	}
	assertTitles(t, p, "A", "B", "G1")
	if p.ItemAt(1).IsGenerated() {
		t.Error("static entry marked generated")
	}
	if !p.ItemAt(2).IsGenerated() {
		t.Error("generated entry not marked")
	}
}

func TestDynamic_VetoGeneratedOption(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("bad", "G1", "G2")}
	p := New(1, Options{
		DynamicLookahead: 2,
		DynamicHistory:   1,
		VetoGenerated:    true,
	})
	p.AddVetoListener(vetoFunc(func(_, candidates []song.Song) []song.Song {
		var out []song.Song
		for _, s := range candidates {
			if s.Title == "bad" {
				out = append(out, s)
			}
		}
		return out
	}))

	p.TurnOnDynamicPlaylist(gen)

	assertTitles(t, p, "G1", "G2")
}

func TestDynamic_VetoSkippedByDefault(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("bad", "G1")}
	p := newDynamicPlaylist(t)
	p.AddVetoListener(vetoFunc(func(_, candidates []song.Song) []song.Song {
		var out []song.Song
		for _, s := range candidates {
			if s.Title == "bad" {
				out = append(out, s)
			}
		}
		return out
	}))

	p.TurnOnDynamicPlaylist(gen)

	// Listeners guard user insertions, not generator output, unless the
	// VetoGenerated option is set.
	assertTitles(t, p, "bad", "G1")
}

func TestClear_TurnsOffDynamic(t *testing.T) {
	gen := &fakeGenerator{pool: songPool("G1", "G2", "G3")}
	p := newDynamicPlaylist(t)
	p.TurnOnDynamicPlaylist(gen)

	p.Clear()

	if p.IsDynamic() {
		t.Error("IsDynamic() = true after Clear")
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
}
