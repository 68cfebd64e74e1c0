package generator

import (
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/yasserzoho/Clementine/internal/song"
)

const similarArtistLimit = 50

// similarProvider is the Last.fm surface SimilarArtists depends on;
// narrowed for testing.
type similarProvider interface {
	SimilarArtists(artist string, limit int) ([]string, error)
}

// lastfmProvider implements similarProvider against the real API.
type lastfmProvider struct {
	api *lastfm.Api
}

func (p *lastfmProvider) SimilarArtists(artist string, limit int) ([]string, error) {
	result, err := p.api.Artist.GetSimilar(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get similar artists: %w", err)
	}

	names := make([]string, 0, len(result.Similars))
	for _, a := range result.Similars {
		names = append(names, a.Name)
	}
	return names, nil
}

// SimilarArtists generates tracks by artists similar to a seed artist,
// drawn from the local library. Exhausted when neither the similar
// artists nor the seed itself have undealt tracks left.
type SimilarArtists struct {
	provider similarProvider
	source   SongSource
	seed     string

	artists []string // resolved lazily on first Generate
	dealt   []int64
}

// NewSimilarArtists creates a similar-artists generator seeded with an
// artist name. apiKey/apiSecret come from the lastfm config section.
func NewSimilarArtists(apiKey, apiSecret string, source SongSource, seed string) *SimilarArtists {
	return &SimilarArtists{
		provider: &lastfmProvider{api: lastfm.New(apiKey, apiSecret)},
		source:   source,
		seed:     seed,
	}
}

// Name implements Generator.
func (g *SimilarArtists) Name() string {
	return "lastfm-similar:" + g.seed
}

// Generate implements Generator.
func (g *SimilarArtists) Generate(n int) ([]song.Song, error) {
	if g.artists == nil {
		names, err := g.provider.SimilarArtists(g.seed, similarArtistLimit)
		if err != nil {
			return nil, err
		}
		// The seed artist's own tracks are fair game too.
		g.artists = append([]string{g.seed}, names...)
	}

	songs, err := g.source.SongsByArtists(g.artists, n, g.dealt)
	if err != nil {
		return nil, fmt.Errorf("songs by artists: %w", err)
	}
	if len(songs) == 0 {
		return nil, ErrExhausted
	}
	for _, s := range songs {
		g.dealt = append(g.dealt, s.LibraryID)
	}
	return songs, nil
}
