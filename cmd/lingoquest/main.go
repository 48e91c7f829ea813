// LingoQuest is a deterministic progression engine for language-learning
// text adventures: speaking the target language earns skill points, skill
// points earn CEFR levels, and world actions advance quests.
//
// Usage: lingoquest [--version] [--plain] [--script <file>] <world_directory>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/tessera-games/lingoquest/cli"
	"github.com/tessera-games/lingoquest/engine"
	"github.com/tessera-games/lingoquest/grammar"
	"github.com/tessera-games/lingoquest/loader"
	"github.com/tessera-games/lingoquest/store/sqlite"
	"github.com/tessera-games/lingoquest/tui"
	"github.com/tessera-games/lingoquest/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// config is read from the environment; the world directory comes from
// the command line and wins over LINGOQUEST_WORLD_DIR.
type config struct {
	WorldDir     string `env:"LINGOQUEST_WORLD_DIR"`
	SaveDB       string `env:"LINGOQUEST_SAVE_DB"`
	GrammarURL   string `env:"LINGOQUEST_GRAMMAR_URL"`
	Language     string `env:"LINGOQUEST_LANGUAGE" envDefault:"spanish"`
	MotherTongue string `env:"LINGOQUEST_MOTHER_TONGUE" envDefault:"english"`
	LogLevel     string `env:"LINGOQUEST_LOG_LEVEL" envDefault:"info"`
}

func main() {
	plain := false
	var worldDir string
	var scriptFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("lingoquest %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			if worldDir == "" {
				worldDir = args[i]
			}
		}
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}
	if worldDir == "" {
		worldDir = cfg.WorldDir
	}
	if worldDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: lingoquest [--version] [--plain] [--script <file>] <world_directory>\n")
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	cat, err := loader.Load(worldDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading world: %v\n", err)
		os.Exit(1)
	}

	checker := newChecker(cfg, cat, log)
	eng := engine.New(cat, checker)

	saves, err := openSaves(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save database: %v\n", err)
		os.Exit(1)
	}
	if saves != nil {
		defer saves.Close()
	}

	ctx := context.Background()

	// Script mode: read commands from a file through the plain CLI.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, saves)
		c.In = f
		c.Run(ctx)
		return
	}

	// Plain CLI when asked for, or when stdout is not a terminal.
	if plain || !isTerminal() {
		cli.New(eng, saves).Run(ctx)
		return
	}

	if err := tui.Run(eng, saves); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newChecker picks the grammar collaborator: the remote service when a
// URL is configured, otherwise the offline vocabulary analyzer seeded
// from the catalog's item vocabulary.
func newChecker(cfg config, cat *types.Catalog, log *slog.Logger) grammar.Checker {
	if cfg.GrammarURL != "" {
		log.Info("using grammar service", "url", cfg.GrammarURL, "language", cfg.Language)
		return grammar.NewClient(cfg.GrammarURL, cfg.Language, cfg.MotherTongue)
	}

	var vocab []string
	for _, item := range cat.Items {
		if w := item.VocabularyWord.Target; w != "" {
			vocab = append(vocab, w)
		}
	}
	log.Info("no grammar service configured, using local analyzer", "vocab_words", len(vocab))
	return grammar.NewLocalAnalyzer(vocab)
}

// openSaves opens the save-slot store, defaulting to ~/.lingoquest/saves.db.
// Returns nil (saves disabled) when no usable path exists.
func openSaves(cfg config, log *slog.Logger) (*sqlite.Store, error) {
	path := cfg.SaveDB
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warn("no home directory, saving disabled", "err", err)
			return nil, nil
		}
		path = filepath.Join(home, ".lingoquest", "saves.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return sqlite.Open(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
