package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vitalvas/automd/apidoc"
	"github.com/vitalvas/automd/internal/demoapp"
)

const defaultTitle = "AutoMD Test App"

// Execute runs the automd CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automd",
		Short: "Generate OpenAPI 3.0 documents from annotated HTTP handlers",
		Long: "automd builds an OpenAPI 3.0 document from the documented handlers of the " +
			"demo status application and renders or serves it.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newGenerateCmd(), newServeCmd())

	for _, c := range append(cmd.Commands(), cmd) {
		c.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
			return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
		})
	}

	return cmd
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	return newLogger(cmd.ErrOrStderr(), verbose), nil
}

// resolveConfig loads the --config file when given, falling back to the
// demo defaults, and applies flag overrides.
func resolveConfig(cmd *cobra.Command) (apidoc.Config, error) {
	cfg := apidoc.Config{Title: defaultTitle}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return apidoc.Config{}, err
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if cfg, err = apidoc.LoadConfig(configPath); err != nil {
			return apidoc.Config{}, newUsageError(err.Error())
		}
	}

	if err := applyConfigFlags(cmd.Flags(), &cfg); err != nil {
		return apidoc.Config{}, err
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return apidoc.Config{}, newUsageError(err.Error())
	}
	return cfg, nil
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("title", "", "Document title (default \""+defaultTitle+"\")")
	flags.String("parameter-style", "", "Parameter rendering: expanded or nested")
	flags.Bool("fail-fast", false, "Stop at the first endpoint that cannot be documented")
}

func applyConfigFlags(flags *pflag.FlagSet, cfg *apidoc.Config) error {
	if flags.Changed("title") {
		value, err := flags.GetString("title")
		if err != nil {
			return err
		}
		if cfg.DefaultTag == cfg.Title {
			cfg.DefaultTag = ""
		}
		cfg.Title = strings.TrimSpace(value)
	}
	if flags.Changed("parameter-style") {
		value, err := flags.GetString("parameter-style")
		if err != nil {
			return err
		}
		cfg.ParameterStyle = apidoc.ParameterStyle(strings.ToLower(strings.TrimSpace(value)))
	}
	if flags.Changed("fail-fast") {
		value, err := flags.GetBool("fail-fast")
		if err != nil {
			return err
		}
		cfg.FailFast = value
	}
	return nil
}

const (
	routerMux = "mux"
	routerChi = "chi"
)

// demoApp returns the demo application handler and its route source for
// the named router.
func demoApp(name string, logger *slog.Logger) (http.Handler, apidoc.App, error) {
	switch strings.ToLower(name) {
	case routerMux:
		r := demoapp.NewRouter(logger)
		return r, apidoc.Mux(r), nil
	case routerChi:
		r := demoapp.NewChiRouter(logger)
		return r, apidoc.Chi(r), nil
	}
	return nil, nil, newUsageError(fmt.Sprintf("unknown router %q (want %s or %s)", name, routerMux, routerChi))
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}
