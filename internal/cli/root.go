// Package cli implements the personamem CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/personakit/memory/internal/config"
	"github.com/personakit/memory/internal/embed"
	"github.com/personakit/memory/internal/engine"
	"github.com/personakit/memory/internal/store"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "personamem",
	Short: "Per-persona long-term memory for chat companions",
	Long:  "Ingests chat turns, extracts durable memories, and retrieves them by hybrid lexical+vector ranking. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $PERSONAMEM_DB or ~/.personamem/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML); defaults apply when unset")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("PERSONAMEM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".personamem", "memory.db")
}

func getConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func getLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openEngine() (*engine.Engine, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return engine.Open(getDBPath(), embed.NewFromEnv(cfg.EmbeddingDim), cfg, getLogger())
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(), getLogger())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
