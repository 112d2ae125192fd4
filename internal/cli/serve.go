package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vitalvas/automd/apidoc"
	"github.com/vitalvas/automd/openapi"
)

const (
	docsPath        = "/docs"
	metricsPath     = "/metrics"
	shutdownTimeout = 10 * time.Second
)

var docsUIs = map[string]openapi.DocsUI{
	"swagger": openapi.DocsSwaggerUI,
	"rapidoc": openapi.DocsRapiDoc,
	"redoc":   openapi.DocsRedoc,
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo application with its documentation mounted at /docs",
		Example: strings.TrimSpace(`  automd serve --addr :8080
  automd serve --router chi --docs-ui redoc`),
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "Listen address")
	flags.String("router", routerMux, "Router hosting the demo application (mux|chi)")
	flags.String("docs-ui", "swagger", "Docs UI (swagger|rapidoc|redoc)")
	addConfigFlags(flags)

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	addr, _ := flags.GetString("addr")
	routerName, _ := flags.GetString("router")
	uiName, _ := flags.GetString("docs-ui")

	ui, ok := docsUIs[strings.ToLower(uiName)]
	if !ok {
		return newUsageError(fmt.Sprintf("unknown docs UI %q (want swagger, rapidoc or redoc)", uiName))
	}

	handler, err := newServeHandler(cfg, routerName, ui, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	return listenAndServe(cmd.Context(), &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}, logger)
}

// newServeHandler returns the demo application with the docs handler at
// /docs and build metrics at /metrics.
func newServeHandler(cfg apidoc.Config, routerName string, ui openapi.DocsUI, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	builder, err := apidoc.New(cfg, apidoc.WithLogger(logger), apidoc.WithMetrics(reg))
	if err != nil {
		return nil, err
	}

	handler, app, err := demoApp(routerName, logger)
	if err != nil {
		return nil, err
	}

	docs := builder.Handler(app, docsPath, &openapi.HandlerConfig{UI: ui})
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})

	switch r := handler.(type) {
	case *mux.Router:
		r.Handle(metricsPath, metrics).Methods(http.MethodGet)
		r.PathPrefix(docsPath).Handler(docs)
	case chi.Router:
		r.Method(http.MethodGet, metricsPath, metrics)
		r.Handle(docsPath, docs)
		r.Handle(docsPath+"/*", docs)
	}

	return handler, nil
}

// listenAndServe runs srv until ctx is done, then shuts it down.
func listenAndServe(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "docs", docsPath, "metrics", metricsPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
