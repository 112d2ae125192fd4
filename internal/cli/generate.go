package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalvas/automd/apidoc"
	"github.com/vitalvas/automd/openapi"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the OpenAPI document of the demo application",
		Example: strings.TrimSpace(`  automd generate --format yaml --out openapi.yaml
  automd --config automd.yaml generate --router chi --validate`),
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	flags := cmd.Flags()
	flags.String("router", routerMux, "Router hosting the demo application (mux|chi)")
	flags.String("format", formatJSON, "Output format (json|yaml)")
	flags.StringP("out", "o", "", "Output file (default stdout)")
	flags.Bool("validate", false, "Validate the document before writing it")
	addConfigFlags(flags)

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	routerName, _ := flags.GetString("router")
	format, _ := flags.GetString("format")
	out, _ := flags.GetString("out")
	validate, _ := flags.GetBool("validate")

	format = strings.ToLower(strings.TrimSpace(format))
	if format != formatJSON && format != formatYAML {
		return newUsageError(fmt.Sprintf("unknown format %q (want %s or %s)", format, formatJSON, formatYAML))
	}

	_, app, err := demoApp(routerName, logger)
	if err != nil {
		return err
	}

	builder, err := apidoc.New(cfg, apidoc.WithLogger(logger))
	if err != nil {
		return err
	}

	doc, err := builder.Build(app)
	if err != nil {
		if doc == nil {
			return err
		}
		logger.Warn("document is incomplete", "error", err)
	}

	if validate {
		if err := openapi.Validate(cmd.Context(), doc); err != nil {
			return err
		}
		logger.Debug("document is valid")
	}

	var data []byte
	if format == formatYAML {
		data, err = openapi.MarshalYAML(doc)
	} else {
		data, err = openapi.MarshalJSON(doc)
	}
	if err != nil {
		return err
	}

	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("document written", "path", out, "paths", len(doc.Paths))
	return nil
}
