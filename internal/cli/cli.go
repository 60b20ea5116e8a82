// Package cli defines the explorer command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"explorer/internal/app"
	"explorer/internal/config"
	"explorer/internal/dataset"
	"explorer/internal/domain"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the explorer command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "explorer",
		Short:         "Schema inference and queries over a JSON dataset",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./explorer.yaml)")

	load := func() (*app.App, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return app.New(cfg)
	}

	root.AddCommand(
		serveCommand(load),
		mcpCommand(load),
		schemaCommand(load),
		queryCommand(load),
		sourcesCommand(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

type loader func() (*app.App, error)

func serveCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return a.ServeHTTP(cmd.Context())
		},
	}
}

func mcpCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return a.ServeMCP(cmd.Context())
		},
	}
}

func schemaCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the inferred schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			fields, err := a.Explorer().Schema(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fields)
		},
	}
}

func queryCommand(load loader) *cobra.Command {
	var request string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a data request and print the page",
		Long: `Run a data request and print the resulting page as JSON.

The request uses the POST /data body format, for example:

  explorer query --request '{"where": {"bikes": {"gt": 5}}, "orderBy": {"field": "bikes", "direction": "desc"}}'

Pass --request - to read it from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := []byte(request)
			if strings.TrimSpace(request) == "-" {
				var err error
				if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read request: %w", err)
				}
			}

			a, err := load()
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())

			res, err := a.Explorer().Query(cmd.Context(), body)
			if err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("invalid request: %s", ve.Message)
				}
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&request, "request", "r", "", "request body as JSON, or - for stdin")
	return cmd
}

func sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the dataset source types and their settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), dataset.ListSources())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
