package empiregen

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/engine"
	entrypoint "github.com/louisbranch/empiregen/internal/platform/cmd"
	"github.com/louisbranch/empiregen/internal/platform/telemetry/metrics"
	"github.com/louisbranch/empiregen/internal/services/generator"
	"github.com/louisbranch/empiregen/internal/storage/sqlite"
	"github.com/louisbranch/empiregen/internal/telemetry"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the empiregen command tree bound to cfg. Flags
// default to the values already in cfg and write back into it.
func NewRootCommand(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "empiregen",
		Short:         "Generate random Stellaris empires",
		Long:          "empiregen reads the game's script files and builds a random, rule-valid empire.\nEach generation may be rerolled once.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.GamePath, "game", cfg.GamePath, "Game install directory")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Session database path")
	flags.StringVar(&cfg.FilePattern, "pattern", cfg.FilePattern, "Script file pattern within each directory")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail on the first unparsable script file")
	flags.IntVar(&cfg.AttemptCap, "attempt-cap", cfg.AttemptCap, "Retry bound for rerolls")
	flags.Float64Var(&cfg.GestaltChance, "gestalt-chance", cfg.GestaltChance, "Probability of a gestalt empire")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
	flags.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for labels and errors")

	root.AddCommand(
		newGenerateCommand(cfg),
		newRerollCommand(cfg),
		newShowCommand(cfg),
		newCatalogCommand(cfg),
	)
	return root
}

func newGenerateCommand(cfg *Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new empire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg, true, func(ctx context.Context, a *app) error {
				rec, err := a.svc.Generate(ctx)
				if err != nil {
					return err
				}
				return renderSession(cmd.OutOrStdout(), format, cfg.Locale, rec)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func newRerollCommand(cfg *Config) *cobra.Command {
	var (
		format    string
		sessionID string
		traitID   string
	)
	cmd := &cobra.Command{
		Use:   "reroll <category>",
		Short: "Spend the session's one reroll on a category",
		Long:  "Categories: " + categoryList() + ".\nThe trait category needs --trait.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := engine.ParseRerollCategory(args[0])
			if err != nil {
				return err
			}
			req := engine.Request{Category: category, TraitID: strings.TrimSpace(traitID)}
			return run(cmd.Context(), *cfg, true, func(ctx context.Context, a *app) error {
				rec, err := a.svc.Reroll(ctx, sessionID, req)
				if err != nil {
					return err
				}
				return renderSession(cmd.OutOrStdout(), format, cfg.Locale, rec)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id (defaults to the latest)")
	cmd.Flags().StringVar(&traitID, "trait", "", "Trait to replace for the trait category")
	return cmd
}

func newShowCommand(cfg *Config) *cobra.Command {
	var (
		format    string
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored empire and its reroll availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg, false, func(ctx context.Context, a *app) error {
				rec, err := generator.FindSession(ctx, a.store, sessionID)
				if err != nil {
					return err
				}
				return renderSession(cmd.OutOrStdout(), format, cfg.Locale, rec)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id (defaults to the latest)")
	return cmd
}

func newCatalogCommand(cfg *Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print how many entities of each kind the game files define",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg, true, func(ctx context.Context, a *app) error {
				return renderCounts(cmd.OutOrStdout(), format, a.svc.Catalog().Counts())
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text, json, yaml)")
	return cmd
}

func categoryList() string {
	names := make([]string, 0, len(engine.RerollCategories()))
	for _, c := range engine.RerollCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// app is the per-invocation wiring of store and service.
type app struct {
	store *sqlite.Store
	svc   *generator.Service
}

// run opens the runtime, calls fn inside the telemetry lifecycle and tears
// everything down. withCatalog loads the game files and builds the service.
func run(ctx context.Context, cfg Config, withCatalog bool, fn func(context.Context, *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEmpireGen, func(ctx context.Context) error {
		rules, err := cfg.Rules()
		if err != nil {
			return err
		}
		rec, err := metrics.NewRecorder()
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
				log.Printf("empiregen: %v", err)
			}
		}()

		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("empiregen: close session store: %v", err)
			}
		}()

		a := &app{store: store}
		if withCatalog {
			cat, err := generator.LoadCatalog(ctx, cfg.GamePath, catalog.Options{Pattern: cfg.pattern(), Strict: cfg.Strict}, rec)
			if err != nil {
				return err
			}
			a.svc, err = generator.New(cat, rules, generator.Deps{
				Sessions: store,
				Catalogs: store,
				Events:   telemetry.NewEmitter(store),
				Metrics:  rec,
			})
			if err != nil {
				return err
			}
		}
		return fn(ctx, a)
	})
}
