// Package main provides the semcanvas server and maintenance CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"semcanvas/domain/config"
	"semcanvas/domain/parser"
	infraconfig "semcanvas/infrastructure/config"
	"semcanvas/infrastructure/di"
	"semcanvas/interfaces/http/rest"
)

// Version is the current semcanvas version
var Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "semcanvas",
	Short:   "Semcanvas - a visual editor for semantic artifact collections",
	Long:    `Semcanvas serves a graph of typed artifacts linked by @references, kept in sync with an outline text projection. The server exposes a REST API plus a websocket feed of collection changes.`,
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the collection as a JSON snapshot",
	Long: `Export every artifact and relationship as a JSON snapshot.

Writes to stdout unless a file argument is given:
  semcanvas export                  # Snapshot to stdout
  semcanvas export backup.json      # Snapshot to file`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the collection from a JSON snapshot",
	Long: `Replace every artifact and relationship with the contents of a
JSON snapshot produced by 'semcanvas export'.

Reads from stdin unless a file argument is given:
  semcanvas import < backup.json
  semcanvas import backup.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse outline text and print the resulting graph",
	Long: `Parse outline text into artifact nodes and reference links without
touching the database. Useful for checking how a document will be
interpreted before applying it.

Reads from stdin unless a file argument is given:
  semcanvas parse outline.txt
  cat outline.txt | semcanvas parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := infraconfig.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing container: %w", err)
	}
	defer container.Close()

	router := rest.NewRouter(
		cfg,
		container.DomainConfig,
		container.CommandBus,
		container.QueryBus,
		container.Drafts,
		container.Outline,
		container.Snapshots,
		container.Hub,
		container.Logger,
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabasePath),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	container, err := quietContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer container.Close()

	data, err := container.Snapshots.Export(cmd.Context())
	if err != nil {
		return fmt.Errorf("exporting snapshot: %w", err)
	}

	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), data)
		return nil
	}
	if err := os.WriteFile(args[0], []byte(data+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported snapshot to %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 0 {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	container, err := quietContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.Snapshots.Import(cmd.Context(), string(data)); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Snapshot imported")
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	var text []byte
	var err error
	if len(args) == 0 {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading outline: %w", err)
	}

	p := parser.New(config.DefaultDomainConfig())
	doc := p.Parse(string(text))
	doc.Links = parser.ResolveLinks(doc.Nodes, doc.Links)

	out := struct {
		Nodes []parseNode `json:"nodes"`
		Links []parseLink `json:"links"`
	}{Nodes: []parseNode{}, Links: []parseLink{}}
	for _, n := range doc.Nodes {
		out.Nodes = append(out.Nodes, parseNode{
			ID:          n.ID().String(),
			Name:        n.Name().String(),
			Type:        n.Type().String(),
			Description: n.Description().String(),
		})
	}
	for _, l := range doc.Links {
		out.Links = append(out.Links, parseLink{
			Source: l.SourceID().String(),
			Target: l.TargetID().String(),
			Type:   l.Type(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type parseNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type parseLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// quietContainer builds a container whose logs stay out of the way of
// command output on stdout
func quietContainer(ctx context.Context) (*di.Container, error) {
	cfg, err := infraconfig.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg.LogLevel = "error"

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing container: %w", err)
	}
	return container, nil
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(parseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
