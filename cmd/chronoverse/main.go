// Command chronoverse resolves the current time to a Bible verse and
// serves the resolution engine over a REST and WebSocket API.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ChronoVerse/core/canon"
	"github.com/FocuswithJustin/ChronoVerse/core/ref"
	"github.com/FocuswithJustin/ChronoVerse/core/timeslot"
	"github.com/FocuswithJustin/ChronoVerse/internal/api"
	"github.com/FocuswithJustin/ChronoVerse/internal/backup"
	"github.com/FocuswithJustin/ChronoVerse/internal/config"
	"github.com/FocuswithJustin/ChronoVerse/internal/engine"
	"github.com/FocuswithJustin/ChronoVerse/internal/logging"
	"github.com/FocuswithJustin/ChronoVerse/internal/stats"
	"github.com/FocuswithJustin/ChronoVerse/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for chronoverse.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Config file path (TOML)" type:"path"`
	DataDir   string `name:"data-dir" help:"Override the cache data directory" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text"`

	// Command groups (noun-first organization)
	Now     NowCmd     `cmd:"" help:"Resolve the verse for the current time"`
	Lookup  LookupCmd  `cmd:"" help:"Fetch an explicit verse reference"`
	Cache   CacheGroup `cmd:"" help:"Cache operations (stats, export, import)"`
	Serve   ServeCmd   `cmd:"" help:"Start the REST API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// CacheGroup contains cache maintenance operations.
type CacheGroup struct {
	Stats  CacheStatsCmd  `cmd:"" help:"Show per-translation cache completion"`
	Export CacheExportCmd `cmd:"" help:"Archive the cache databases to a tar.xz file"`
	Import CacheImportCmd `cmd:"" help:"Restore cache databases from a tar.xz archive"`
}

// runtime bundles the components every command needs.
type runtime struct {
	cfg    config.Config
	store  *store.Store
	engine *engine.Engine
	stats  *stats.Collector
}

func setup() (*runtime, error) {
	initLogging()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.DataDir != "" {
		cfg.DataDir = CLI.DataDir
	}

	structure := canon.NewStructure()
	st, err := store.NewStore(cfg.DataDir, structure)
	if err != nil {
		return nil, fmt.Errorf("opening cache store: %w", err)
	}

	collector := stats.NewCollector()
	eng := engine.New(engine.Config{
		Structure:    structure,
		Executor:     cfg.BuildExecutor(st),
		Stats:        collector,
		Translations: cfg.TranslationCodes(),
	})

	return &runtime{cfg: cfg, store: st, engine: eng, stats: collector}, nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

// NowCmd resolves the verse for the current (or a given) time.
type NowCmd struct {
	Format      string `help:"Time format (12 or 24); defaults to the config value"`
	Translation string `help:"Translation code, or 'random'"`
	Secondary   string `help:"Second translation for parallel display"`
	At          string `help:"Resolve for a given clock time (HH:MM) instead of now"`
}

func (c *NowCmd) Run() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	format, err := c.resolveFormat(rt.cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	if c.At != "" {
		clock, err := time.Parse("15:04", c.At)
		if err != nil {
			return fmt.Errorf("invalid --at value %q: %w", c.At, err)
		}
		now = time.Date(now.Year(), now.Month(), now.Day(),
			clock.Hour(), clock.Minute(), 0, 0, now.Location())
	}

	translation := c.Translation
	if translation == "" {
		translation = rt.cfg.Translation
	}
	secondary := c.Secondary
	if secondary == "" {
		secondary = rt.cfg.SecondaryTranslation
	}

	out := rt.engine.Current(context.Background(), now, format, translation, secondary)
	printOutcome(out)
	return nil
}

func (c *NowCmd) resolveFormat(cfg config.Config) (timeslot.Format, error) {
	raw := c.Format
	if raw == "" {
		raw = cfg.TimeFormat
	}
	return timeslot.ParseFormat(raw)
}

func printOutcome(out engine.Outcome) {
	switch out.Kind {
	case engine.KindVerse:
		printRecord(out.Verse.Reference.String(), out.Verse.Translation, out.Verse.Text, out.Verse.Degraded)
		if out.Secondary != nil {
			printRecord(out.Secondary.Reference.String(), out.Secondary.Translation, out.Secondary.Text, out.Secondary.Degraded)
		}
	case engine.KindSummary:
		fmt.Printf("%s\n", out.Summary.Text)
	}
}

func printRecord(reference, translation, text string, degraded bool) {
	fmt.Printf("%s (%s)\n", reference, translation)
	fmt.Printf("  %s\n", text)
	if degraded {
		fmt.Println("  [offline fallback]")
	}
}

// LookupCmd fetches an explicit reference, e.g. "John 3:16".
type LookupCmd struct {
	Ref         string `arg:"" help:"Verse reference, e.g. 'John 3:16'"`
	Translation string `help:"Translation code, or 'random'"`
}

func (c *LookupCmd) Run() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	parsed, err := ref.Parse(c.Ref)
	if err != nil {
		return err
	}
	translation := c.Translation
	if translation == "" {
		translation = rt.cfg.Translation
	}

	rec := rt.engine.Lookup(context.Background(), parsed, translation)
	printRecord(rec.Reference.String(), rec.Translation, rec.Text, rec.Degraded)
	return nil
}

// CacheStatsCmd shows per-translation cache completion.
type CacheStatsCmd struct{}

func (c *CacheStatsCmd) Run() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	codes := rt.cfg.TranslationCodes()
	if len(codes) == 0 {
		codes = rt.store.Codes()
	}
	if len(codes) == 0 {
		fmt.Println("No translation caches found.")
		return nil
	}

	fmt.Printf("%-12s %10s %10s\n", "TRANSLATION", "VERSES", "COMPLETE")
	for _, code := range codes {
		cache, err := rt.store.Open(code)
		if err != nil {
			return fmt.Errorf("opening cache %s: %w", code, err)
		}
		fmt.Printf("%-12s %10d %9.2f%%\n", cache.Code(), cache.Len(), cache.Completion())
	}
	return nil
}

// CacheExportCmd archives the cache databases.
type CacheExportCmd struct {
	Out string `required:"" help:"Output archive path (tar.xz)" type:"path"`
}

func (c *CacheExportCmd) Run() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	n, err := backup.Export(rt.cfg.DataDir, c.Out)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d database(s) to %s\n", n, c.Out)
	return nil
}

// CacheImportCmd restores cache databases from an archive.
type CacheImportCmd struct {
	Archive   string `arg:"" help:"Archive path (tar.xz)" type:"existingfile"`
	Overwrite bool   `help:"Replace existing cache databases"`
}

func (c *CacheImportCmd) Run() error {
	initLogging()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.DataDir != "" {
		cfg.DataDir = CLI.DataDir
	}

	// Import runs before any database is opened so restored files are
	// picked up on the next open.
	n, err := backup.Import(c.Archive, cfg.DataDir, c.Overwrite)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d database(s) into %s\n", n, cfg.DataDir)
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port int `help:"HTTP server port; defaults to the config value"`
}

func (c *ServeCmd) Run() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.store.Close()

	format, err := timeslot.ParseFormat(rt.cfg.TimeFormat)
	if err != nil {
		return err
	}
	port := c.Port
	if port == 0 {
		port = rt.cfg.Server.Port
	}

	srv := api.NewServer(api.Config{
		Port:           port,
		TimeFormat:     format,
		Translation:    rt.cfg.Translation,
		Secondary:      rt.cfg.SecondaryTranslation,
		AllowedOrigins: rt.cfg.Server.AllowedOrigins,
	}, rt.engine, rt.store, rt.stats)
	return srv.Start()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("chronoverse version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("chronoverse"),
		kong.Description("ChronoVerse - the time-to-verse resolution engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
