package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"filedupfinder/internal/similarity"
)

var (
	dbPath     string
	threshold  float64
	workers    int
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "filedupfinder",
	Short: "Find and manage duplicate files",
	Long: `filedupfinder is a CLI tool for finding duplicate and near-duplicate files.

Exact duplicates are detected by content hash. Below a threshold of 1.0 the
tool also looks for near-duplicates using configurable similarity methods:
perceptual image hashing, text content comparison, image structure
comparison, and opt-in binary and filename matching.

Example usage:
  filedupfinder scan ./documents                  # Exact duplicates only
  filedupfinder scan ./photos --threshold 0.9     # Include near-duplicates
  filedupfinder list                              # List duplicate groups
  filedupfinder explain a.txt b.txt               # Why are these similar?
  filedupfinder clean --dry-run                   # Preview deletions`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Default database path
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".filedupfinder", "files.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to SQLite database")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 1.0, "Similarity threshold in (0,1]; 1.0 = exact duplicates only")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 8, "Number of parallel workers for scanning")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML similarity config")
}

// similarityConfig builds the effective similarity configuration from the
// optional YAML file plus command-line overrides.
func similarityConfig(cmd *cobra.Command) (similarity.Config, error) {
	cfg := similarity.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = similarity.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
	}

	// The flag wins over the file when set explicitly
	if configPath == "" || cmd.Flags().Changed("threshold") {
		cfg.Threshold = threshold
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
