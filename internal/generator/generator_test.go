package generator

import (
	"errors"
	"testing"

	"github.com/yasserzoho/Clementine/internal/song"
)

// fakeSource deals from a fixed pool, honoring the exclusion list the way
// the library queries do.
type fakeSource struct {
	pool []song.Song
	err  error
}

func (f *fakeSource) RandomSongs(n int, exclude []int64) ([]song.Song, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deal(n, exclude, nil), nil
}

func (f *fakeSource) SongsByArtists(artists []string, n int, exclude []int64) ([]song.Song, error) {
	if f.err != nil {
		return nil, f.err
	}
	byArtist := make(map[string]bool, len(artists))
	for _, a := range artists {
		byArtist[a] = true
	}
	return f.deal(n, exclude, byArtist), nil
}

func (f *fakeSource) deal(n int, exclude []int64, byArtist map[string]bool) []song.Song {
	excluded := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var out []song.Song
	for _, s := range f.pool {
		if len(out) == n {
			break
		}
		if excluded[s.LibraryID] {
			continue
		}
		if byArtist != nil && !byArtist[s.Artist] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func libSong(id int64, title, artist string) song.Song {
	return song.Song{LibraryID: id, Title: title, Artist: artist, URL: "/m/" + title + ".mp3", Rating: -1}
}

func TestLibraryRandom_NeverRepeats(t *testing.T) {
	src := &fakeSource{pool: []song.Song{
		libSong(1, "A", "X"),
		libSong(2, "B", "X"),
		libSong(3, "C", "Y"),
	}}
	g := NewLibraryRandom(src)

	if g.Name() != "library-random" {
		t.Errorf("Name() = %q", g.Name())
	}

	seen := make(map[int64]bool)
	for i := 0; i < 2; i++ {
		songs, err := g.Generate(2)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for _, s := range songs {
			if seen[s.LibraryID] {
				t.Errorf("song %d dealt twice", s.LibraryID)
			}
			seen[s.LibraryID] = true
		}
	}
	if len(seen) != 3 {
		t.Errorf("dealt %d songs, want 3", len(seen))
	}

	if _, err := g.Generate(1); !errors.Is(err, ErrExhausted) {
		t.Errorf("Generate after pool drained error = %v, want ErrExhausted", err)
	}
}

func TestLibraryRandom_SourceError(t *testing.T) {
	g := NewLibraryRandom(&fakeSource{err: errors.New("database locked")})

	if _, err := g.Generate(1); err == nil || errors.Is(err, ErrExhausted) {
		t.Errorf("Generate error = %v, want wrapped source error", err)
	}
}

type fakeSimilar struct {
	names []string
	err   error
	calls int
}

func (f *fakeSimilar) SimilarArtists(artist string, limit int) ([]string, error) {
	f.calls++
	return f.names, f.err
}

func TestSimilarArtists_DealsFromSeedAndSimilar(t *testing.T) {
	src := &fakeSource{pool: []song.Song{
		libSong(1, "S1", "Seed"),
		libSong(2, "N1", "Neighbor"),
		libSong(3, "U1", "Unrelated"),
	}}
	provider := &fakeSimilar{names: []string{"Neighbor"}}
	g := &SimilarArtists{provider: provider, source: src, seed: "Seed"}

	if g.Name() != "lastfm-similar:Seed" {
		t.Errorf("Name() = %q", g.Name())
	}

	songs, err := g.Generate(10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("got %d songs, want 2 (seed + similar, unrelated excluded)", len(songs))
	}

	if _, err := g.Generate(1); !errors.Is(err, ErrExhausted) {
		t.Errorf("Generate error = %v, want ErrExhausted", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (resolved lazily, once)", provider.calls)
	}
}

func TestSimilarArtists_ProviderError(t *testing.T) {
	g := &SimilarArtists{
		provider: &fakeSimilar{err: errors.New("service unavailable")},
		source:   &fakeSource{},
		seed:     "Seed",
	}

	if _, err := g.Generate(1); err == nil {
		t.Fatal("Generate error = nil, want provider error")
	}
	// The artist list stays unresolved so a later call retries.
	if g.artists != nil {
		t.Error("artists cached despite provider failure")
	}
}
