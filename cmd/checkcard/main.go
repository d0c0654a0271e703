// Package main provides the CLI entrypoint for checkcard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/checkcard/internal/ai"
	"github.com/verte-zerg/checkcard/internal/config"
	"github.com/verte-zerg/checkcard/internal/deck"
	"github.com/verte-zerg/checkcard/internal/extract"
	"github.com/verte-zerg/checkcard/internal/history"
	"github.com/verte-zerg/checkcard/internal/logging"
	"github.com/verte-zerg/checkcard/internal/model"
	"github.com/verte-zerg/checkcard/internal/reminder"
	"github.com/verte-zerg/checkcard/internal/session"
	"github.com/verte-zerg/checkcard/internal/source"
	"github.com/verte-zerg/checkcard/internal/stats"
	"github.com/verte-zerg/checkcard/internal/store"
	"github.com/verte-zerg/checkcard/internal/tui"
)

const defaultCurveWindow = 5

var (
	configPath string

	importAny   bool
	importStudy bool

	deckReset bool

	historyClear  bool
	historyYes    bool
	historyLast   int
	historyWindow int

	remindOpen bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "checkcard",
		Short:         "Multiple-choice flashcard trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(cmd.Context(), a, false)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file (.toml or .yaml)")
	flags.String("store", config.DefaultDriver, "storage backend: sqlite or badger")
	flags.String("store-path", "", "storage file or directory (default under XDG data home)")
	flags.String("ai-model", config.DefaultModel, "model used for extraction and explanations")
	flags.String("ai-base-url", "", "OpenAI-compatible API base URL")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRemindCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the services shared by the commands.
type app struct {
	cfg    model.Config
	logger *slog.Logger
	kv     store.KV
	deck   *deck.Deck
	ledger *history.Ledger
	collab ai.Collaborator

	logCloser io.Closer
}

// openApp loads the config and opens the store. Interactive runs log to the
// log file since the TUI owns the terminal.
func openApp(cmd *cobra.Command, interactive bool) (*app, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: cfg}
	if interactive {
		logger, closer, err := logging.OpenFile(cfg.Log.Path, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.logger, a.logCloser = logger, closer
	} else {
		a.logger = logging.New(os.Stderr, cfg.Log.Level)
	}

	kv, err := store.Open(cfg.Store, a.logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	a.kv = kv

	ctx := cmd.Context()
	a.deck = deck.New(kv, a.logger)
	if err := a.deck.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.ledger = history.New(kv, history.WithLogger(a.logger))
	if err := a.ledger.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.collab = ai.New(cfg.AI, a.logger)
	a.logger.Debug("app opened", "store", cfg.Store.Driver, "path", cfg.Store.Path, "ai", cfg.AI.Enabled())
	return a, nil
}

func (a *app) Close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			logErrf("failed to close store: %v\n", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *app) resolver() *source.Resolver {
	return source.NewResolver(config.DefaultRepoCacheDir(), a.logger)
}

func runTUI(ctx context.Context, a *app, startStudy bool) error {
	m := tui.NewModel(ctx, tui.Options{
		Deck:       a.deck,
		Ledger:     a.ledger,
		Extractor:  extract.New(a.collab, a.logger),
		Resolver:   a.resolver(),
		AI:         a.collab,
		Open:       reminder.Open,
		Shuffler:   session.NewShuffler(),
		Logger:     a.logger,
		StartStudy: startStudy,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|url|repo.git#path>",
		Short: "Extract flashcards and make them the active deck",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importAny, "any", false, "accept any file extension")
	cmd.Flags().BoolVar(&importStudy, "study", false, "start studying the imported deck")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	target := strings.TrimSpace(args[0])
	if !importAny {
		if err := extract.CheckExtension(source.Name(target)); err != nil {
			return err
		}
	}
	a, err := openApp(cmd, importStudy)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	doc, err := a.resolver().Resolve(ctx, target)
	if err != nil {
		return err
	}
	cards, err := extract.New(a.collab, a.logger).Extract(ctx, doc.Content, extract.FormatFromName(doc.Name))
	if err != nil {
		return fmt.Errorf("%s: %w", doc.Name, err)
	}
	if err := a.deck.Replace(ctx, cards); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards from %s\n", len(cards), doc.Name); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if importStudy {
		return runTUI(ctx, a, true)
	}
	return nil
}

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Show the active deck",
		Args:  cobra.NoArgs,
		RunE:  runDeckCmd,
	}
	cmd.Flags().BoolVar(&deckReset, "reset", false, "restore the default deck")
	return cmd
}

func runDeckCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if deckReset {
		if err := a.deck.Reset(cmd.Context()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Deck restored to the %d default cards.\n", a.deck.Len())
		return err
	}
	origin := "default"
	if a.deck.Custom() {
		origin = "imported"
	}
	if _, err := fmt.Fprintf(out, "%d cards (%s)\n\n", a.deck.Len(), origin); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderDeck(out, a.deck.Cards(), stats.TerminalWidth())
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past study sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded sessions")
	cmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if historyClear {
		if !historyYes {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Apagar %d sessões do histórico?", a.ledger.Len())).
				Affirmative("Sim").
				Negative("Não").
				Value(&confirmed).
				Run()
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if !confirmed {
				_, err := fmt.Fprintln(out, "Cancelado.")
				return err
			}
		}
		if err := a.ledger.Clear(cmd.Context()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "Histórico apagado.")
		return err
	}

	entries := a.ledger.Entries()
	if historyLast > 0 && historyLast < len(entries) {
		entries = entries[:historyLast]
	}
	useColor := out == os.Stdout && stats.ShouldUseColor(os.Stdout)
	if err := stats.RenderSummary(out, entries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistory(out, entries, useColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurve(out, entries, historyWindow, stats.TerminalWidth(), useColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print a calendar link to review again",
		Args:  cobra.NoArgs,
		RunE:  runRemindCmd,
	}
	cmd.Flags().BoolVar(&remindOpen, "open", false, "open the link in the browser")
	return cmd
}

func runRemindCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	latest, ok := a.ledger.Latest()
	if !ok {
		return fmt.Errorf("no study sessions recorded yet")
	}
	link := reminder.CalendarURL(latest.Score, latest.Total)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), link); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if remindOpen {
		if err := reminder.Open(cmd.Context(), link); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# checkcard configuration
# Uncomment a value to enable it. Environment variables (%sSECTION_KEY)
# override the file, CLI flags override both.

[store]
# driver = %q            # sqlite or badger
# path = ""                # default under the XDG data directory

[ai]
# api_key = ""             # enables AI extraction and explanations
# base_url = ""            # OpenAI-compatible endpoint
# model = %q
# timeout_seconds = %d
# language = %q

[log]
# level = %q              # debug, info, warn or error
# path = ""                # default under the XDG state directory
`,
		config.EnvPrefix,
		config.DefaultDriver,
		config.DefaultModel,
		config.DefaultTimeoutSeconds,
		config.DefaultLanguage,
		config.DefaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
