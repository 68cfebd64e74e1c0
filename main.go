package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/yasserzoho/Clementine/internal/backend"
	"github.com/yasserzoho/Clementine/internal/config"
	"github.com/yasserzoho/Clementine/internal/generator"
	"github.com/yasserzoho/Clementine/internal/library"
	"github.com/yasserzoho/Clementine/internal/playlist"
	"github.com/yasserzoho/Clementine/internal/queue"
	"github.com/yasserzoho/Clementine/internal/song"
)

const usage = `usage: clementine <command> [args]

  scan                     scan the configured library sources
  watch                    watch library sources until interrupted
  playlists                list stored playlists
  new <name>               create an empty playlist
  show <id>                print a playlist
  add <id> <url...>        add files, streams or radio URLs to a playlist
  shuffle <id>             randomize a playlist's order
  dynamic <id> [artist]    fill a playlist dynamically (random, or by
                           artists similar to the given seed)
`

type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	library *library.Library
	backend *backend.Backend
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.Load()
	if err != nil {
		fatal("loading config", err)
	}

	lib, err := library.Open()
	if err != nil {
		fatal("opening library", err)
	}
	defer lib.Close()

	be, err := backend.Open()
	if err != nil {
		fatal("opening playlist store", err)
	}
	defer be.Close()

	e := &env{cfg: cfg, logger: logger, library: lib, backend: be}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "scan":
		err = e.scan()
	case "watch":
		err = e.watch()
	case "playlists":
		err = e.playlists()
	case "new":
		err = e.create(args)
	case "show":
		err = e.show(args)
	case "add":
		err = e.add(args)
	case "shuffle":
		err = e.shuffle(args)
	case "dynamic":
		err = e.dynamic(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fatal(cmd, err)
	}
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "clementine: %s: %v\n", what, err)
	os.Exit(1)
}

func (e *env) scan() error {
	if len(e.cfg.LibrarySources) == 0 {
		return fmt.Errorf("no library_sources configured")
	}
	start := time.Now()
	stats, err := e.library.Scan(e.cfg.LibrarySources)
	if err != nil {
		return err
	}
	count, err := e.library.SongCount()
	if err != nil {
		return err
	}
	fmt.Printf("scanned in %s: %d added, %d updated, %d removed, %d unchanged\n",
		time.Since(start).Round(time.Millisecond),
		stats.Added, stats.Updated, stats.Removed, stats.Skipped)
	fmt.Printf("library holds %s songs\n", humanize.Comma(int64(count)))
	return nil
}

func (e *env) watch() error {
	if len(e.cfg.LibrarySources) == 0 {
		return fmt.Errorf("no library_sources configured")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("watching library sources, ctrl-c to stop")
	err := e.library.Watch(ctx, e.cfg.LibrarySources, library.WatchCallbacks{
		SongChanged: func(s song.Song) {
			fmt.Printf("updated: %s\n", s.DisplayTitle())
		},
		SongRemoved: func(path string) {
			fmt.Printf("removed: %s\n", path)
		},
	}, e.logger)
	if err == context.Canceled {
		return nil
	}
	return err
}

func (e *env) playlists() error {
	infos, err := e.backend.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no playlists")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%3d  %-30s %s\n", info.ID, info.Name,
			english.Plural(info.Entries, "track", ""))
	}
	return nil
}

func (e *env) create(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: new <name>")
	}
	id, err := e.backend.Create(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("created playlist %d\n", id)
	return nil
}

// openPlaylist loads a stored playlist into a live one.
func (e *env) openPlaylist(id int64) (*playlist.Playlist, backend.Snapshot, error) {
	snap, err := e.backend.Load(id)
	if err != nil {
		return nil, backend.Snapshot{}, fmt.Errorf("no playlist %d", id)
	}
	dyn := e.cfg.GetDynamicConfig()
	p := playlist.New(id, playlist.Options{
		UndoDepth:        e.cfg.GetUndoDepth(),
		DynamicLookahead: dyn.Lookahead,
		DynamicHistory:   dyn.History,
		VetoGenerated:    *dyn.VetoGenerated,
		Library:          e.library,
		Queue:            queue.New(),
		Logger:           e.logger,
	})
	backend.Restore(p, snap)
	return p, snap, nil
}

func (e *env) show(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	p, snap, err := e.openPlaylist(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s, %s)\n", snap.Name,
		english.Plural(p.Len(), "track", ""),
		formatDuration(p.TotalLength()))
	for row, s := range p.AllSongs() {
		marker := "  "
		if row == p.CurrentRow() {
			marker = "▶ "
		}
		fmt.Printf("%s%3d  %s\n", marker, row+1, s.DisplayTitle())
	}
	return nil
}

func (e *env) add(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <id> <url...>")
	}
	id, err := parseID(args[:1])
	if err != nil {
		return err
	}
	p, snap, err := e.openPlaylist(id)
	if err != nil {
		return err
	}

	var failures int
	unsub := p.Subscribe(func(ev playlist.Event) {
		if le, ok := ev.(playlist.LoadError); ok {
			fmt.Fprintln(os.Stderr, le.Message)
			failures++
		}
	})
	defer p.Unsubscribe(unsub)

	before := p.Len()
	p.InsertURLs(args[1:], -1, false, false)
	p.Wait()

	added := p.Len() - before
	fmt.Printf("added %s\n", english.Plural(added, "track", ""))
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d URLs could not be resolved\n", failures)
	}
	return e.backend.Save(id, backend.Capture(p, snap.Name))
}

func (e *env) shuffle(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	p, snap, err := e.openPlaylist(id)
	if err != nil {
		return err
	}
	p.Shuffle()
	return e.backend.Save(id, backend.Capture(p, snap.Name))
}

func (e *env) dynamic(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: dynamic <id> [artist]")
	}
	id, err := parseID(args[:1])
	if err != nil {
		return err
	}
	p, snap, err := e.openPlaylist(id)
	if err != nil {
		return err
	}

	var gen generator.Generator
	if len(args) > 1 {
		if !e.cfg.HasLastfmConfig() {
			return fmt.Errorf("similar-artists mode needs lastfm credentials in config.toml")
		}
		gen = generator.NewSimilarArtists(e.cfg.Lastfm.APIKey, e.cfg.Lastfm.APISecret, e.library, args[1])
	} else {
		gen = generator.NewLibraryRandom(e.library)
	}

	p.TurnOnDynamicPlaylist(gen)
	if !p.IsDynamic() {
		fmt.Println("generator had nothing to offer")
	}
	fmt.Printf("%s now holds %s\n", snap.Name, english.Plural(p.Len(), "track", ""))
	return e.backend.Save(id, backend.Capture(p, snap.Name))
}

func parseID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing playlist id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad playlist id %q", args[0])
	}
	return id, nil
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
