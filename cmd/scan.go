package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"filedupfinder/internal/scan"
	"filedupfinder/internal/similarity"
	"filedupfinder/internal/storage"
)

var (
	scanMethods       []string
	scanStrategy      string
	scanFilenameMatch bool
	scanBinaryMatch   bool
	scanNoPerceptual  bool
	scanNoContent     bool
	scanNoImage       bool

	scanMinSizeKB     int64
	scanMaxSizeKB     int64
	scanNoSubfolders  bool
	scanIncludeHidden bool
	scanIncludeLinks  bool
	scanIncludeSystem bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder for duplicate files",
	Long: `Scan a folder recursively for files and detect duplicates.

The scan will:
1. Walk the folder applying filters (hidden, shortcut, system, size)
2. Compute a content hash for each file
3. Group byte-identical files, and at thresholds below 1.0 also group
   near-duplicates using the configured similarity methods
4. Store results in the database for later use

Example:
  filedupfinder scan ./documents
  filedupfinder scan ./photos --threshold 0.9
  filedupfinder scan ./notes --threshold 0.8 --methods content_text
  filedupfinder scan ./backup --threshold 0.95 --binary-match`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanMethods, "methods", nil, "Ordered similarity methods (default: hash_perceptual,content_text,image_structural)")
	scanCmd.Flags().StringVar(&scanStrategy, "strategy", "", "Clustering strategy: anchor (default) or unionfind")
	scanCmd.Flags().BoolVar(&scanFilenameMatch, "filename-match", false, "Also match files by fuzzy filename similarity (opt-in)")
	scanCmd.Flags().BoolVar(&scanBinaryMatch, "binary-match", false, "Also match files by byte-wise binary similarity (opt-in)")
	scanCmd.Flags().BoolVar(&scanNoPerceptual, "no-perceptual", false, "Disable perceptual image hashing")
	scanCmd.Flags().BoolVar(&scanNoContent, "no-content", false, "Disable text/binary content comparison")
	scanCmd.Flags().BoolVar(&scanNoImage, "no-image", false, "Disable image structure comparison")

	scanCmd.Flags().Int64Var(&scanMinSizeKB, "min-size", 0, "Skip files smaller than this many KB")
	scanCmd.Flags().Int64Var(&scanMaxSizeKB, "max-size", 0, "Skip files larger than this many KB (0 = no limit)")
	scanCmd.Flags().BoolVar(&scanNoSubfolders, "no-subfolders", false, "Do not recurse into subfolders")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files")
	scanCmd.Flags().BoolVar(&scanIncludeLinks, "include-shortcuts", false, "Include shortcuts and symlinks")
	scanCmd.Flags().BoolVar(&scanIncludeSystem, "include-system", false, "Include system files")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	folder := args[0]

	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absFolder)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", absFolder)
	}

	cfg, err := similarityConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Scanning: %s\n", absFolder)
	fmt.Printf("Threshold: %.2f\n", cfg.Threshold)
	fmt.Printf("Workers: %d\n\n", workers)

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	filters := scan.DefaultFilterOptions()
	filters.MinSizeKB = scanMinSizeKB
	filters.MaxSizeKB = scanMaxSizeKB
	filters.IncludeSubfolders = !scanNoSubfolders
	filters.ExcludeHidden = !scanIncludeHidden
	filters.ExcludeShortcuts = !scanIncludeLinks
	filters.ExcludeSystem = !scanIncludeSystem

	// Scanner with progress reporting
	lastLine := ""
	s := scan.NewScanner(
		scan.WithWorkers(workers),
		scan.WithFilters(filters),
		scan.WithProgress(func(scanned, total int, current string) {
			if lastLine != "" {
				fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
			}
			shortPath := current
			if len(shortPath) > 50 {
				shortPath = "..." + shortPath[len(shortPath)-47:]
			}
			lastLine = fmt.Sprintf("Progress: %d/%d  %s", scanned, total, shortPath)
			fmt.Print(lastLine)
		}),
	)

	files, err := s.ScanFolder(absFolder)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if lastLine != "" {
		fmt.Print("\r" + strings.Repeat(" ", len(lastLine)) + "\r")
	}

	fmt.Printf("Scanned: %d files\n", len(files))

	if len(files) == 0 {
		fmt.Println("No files found.")
		return nil
	}

	fmt.Println("Finding duplicates...")
	detector := similarity.NewDetector(cfg)
	groupMap := detector.FindSimilarFiles(files)
	groups := similarity.BuildGroups(groupMap)

	if err := store.SaveFiles(files); err != nil {
		return fmt.Errorf("failed to save files: %w", err)
	}
	if err := store.UpdateGroups(groups); err != nil {
		return fmt.Errorf("failed to update groups: %w", err)
	}

	totalDuplicates := 0
	for _, group := range groups {
		totalDuplicates += len(group.Remove)
	}
	store.RecordScan(absFolder, len(files), len(groups), totalDuplicates)

	fmt.Println()
	fmt.Println("=== Scan Complete ===")
	fmt.Printf("Total files:      %d\n", len(files))
	fmt.Printf("Duplicate groups: %d\n", len(groups))
	fmt.Printf("Duplicates found: %d\n", totalDuplicates)

	if len(groups) > 0 {
		fmt.Println()
		fmt.Println("Run 'filedupfinder list' to see duplicate groups")
		fmt.Println("Run 'filedupfinder clean --dry-run' to preview deletions")
	}

	return nil
}

// applyScanFlags folds the scan command's method flags into the config.
// The opt-in flags both append the method and flip its toggle, since a
// method needs both to run.
func applyScanFlags(cfg *similarity.Config) {
	if len(scanMethods) > 0 {
		cfg.Methods = nil
		for _, m := range scanMethods {
			cfg.Methods = append(cfg.Methods, similarity.Method(m))
		}
	}

	if scanStrategy != "" {
		cfg.Strategy = similarity.Strategy(scanStrategy)
	}

	if scanFilenameMatch {
		cfg.EnableFilenameSimilarity = true
		cfg.Methods = appendMethod(cfg.Methods, similarity.MethodFilenameFuzzy)
	}
	if scanBinaryMatch {
		cfg.EnableContentSimilarity = true
		cfg.Methods = appendMethod(cfg.Methods, similarity.MethodContentBinary)
	}

	if scanNoPerceptual {
		cfg.EnablePerceptualHash = false
	}
	if scanNoContent {
		cfg.EnableContentSimilarity = false
	}
	if scanNoImage {
		cfg.EnableImageSimilarity = false
	}
}

func appendMethod(methods []similarity.Method, m similarity.Method) []similarity.Method {
	for _, existing := range methods {
		if existing == m {
			return methods
		}
	}
	return append(methods, m)
}
