package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"filedupfinder/internal/models"
	"filedupfinder/internal/similarity"
	"filedupfinder/internal/storage"
)

var explainCmd = &cobra.Command{
	Use:   "explain <file1> <file2>",
	Short: "Explain why two files are considered similar",
	Long: `Compare two files with the configured similarity methods and show
the aggregate score plus a per-method breakdown of every method that
clears the threshold.

Example:
  filedupfinder explain a.txt b.txt --threshold 0.8
  filedupfinder explain 1.jpg 2.jpg --threshold 0.9`,
	Args: cobra.ExactArgs(2),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().BoolVar(&scanFilenameMatch, "filename-match", false, "Also consider fuzzy filename similarity")
	explainCmd.Flags().BoolVar(&scanBinaryMatch, "binary-match", false, "Also consider byte-wise binary similarity")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	// Prefer descriptors from a previous scan; their content hashes are
	// already computed.
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	a, err := describeFile(store, args[0])
	if err != nil {
		return err
	}
	b, err := describeFile(store, args[1])
	if err != nil {
		return err
	}

	cfg, err := similarityConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	detector := similarity.NewDetector(cfg)

	fmt.Printf("Score:     %.3f (threshold %.2f)\n", detector.Score(a, b), cfg.Threshold)
	fmt.Printf("Reason:    %s\n", detector.Explain(a, b))
	return nil
}

func describeFile(store *storage.Storage, path string) (*models.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not a file: %s", path)
	}

	if stored, err := store.GetFileByPath(path); err == nil && stored != nil {
		return stored, nil
	}

	return &models.FileInfo{
		Path:     path,
		FileSize: info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}
