package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"filedupfinder/internal/models"
	"filedupfinder/internal/storage"
)

var (
	listJSON    bool
	listVerbose bool
	listSummary bool
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all duplicate groups",
	Long: `Display all detected duplicate groups with their files.

Each group shows:
- Group key (content hash for exact duplicates, group_N for near-duplicates)
- Files in the group with their quality scores
- Which file will be kept (highest score) marked with ✓
- Which files will be removed marked with ✗

Example:
  filedupfinder list              # Show first 10 groups (default)
  filedupfinder list -n 0         # Show all groups
  filedupfinder list -s           # Summary view (compact)
  filedupfinder list --offset 10  # Groups 11-20`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show detailed file info")
	listCmd.Flags().BoolVarP(&listSummary, "summary", "s", false, "Show summary only (group counts and sizes)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Limit number of groups to display (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip first N groups (for pagination)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	groups, err := store.GetDuplicateGroups()
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate groups found.")
		fmt.Println("Run 'filedupfinder scan <folder>' to scan for duplicates.")
		return nil
	}

	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(groups)
	}

	// Calculate totals
	totalDuplicates := 0
	var totalSavings int64
	for _, group := range groups {
		for _, f := range group.Remove {
			totalDuplicates++
			totalSavings += f.FileSize
		}
	}

	fmt.Printf("Found %d duplicate groups (%d duplicates, %s reclaimable)\n\n",
		len(groups), totalDuplicates, formatSize(totalSavings))

	// Apply pagination
	totalGroups := len(groups)
	startIdx := listOffset
	if startIdx > len(groups) {
		startIdx = len(groups)
	}
	groups = groups[startIdx:]

	if listLimit > 0 && listLimit < len(groups) {
		groups = groups[:listLimit]
	}

	if len(groups) == 0 {
		fmt.Printf("No groups in range (offset %d exceeds total %d)\n", listOffset, totalGroups)
	} else if listSummary {
		printSummaryTable(groups)
	} else {
		for _, group := range groups {
			printGroup(group, listVerbose)
		}
	}

	// Show pagination info
	endIdx := startIdx + len(groups)
	if len(groups) > 0 {
		fmt.Printf("Showing groups %d-%d of %d\n", startIdx+1, endIdx, totalGroups)
		if endIdx < totalGroups {
			limitArg := ""
			if listLimit > 0 {
				limitArg = fmt.Sprintf(" -n %d", listLimit)
			}
			fmt.Printf("Next page: filedupfinder list%s --offset %d\n", limitArg, endIdx)
		}
	}

	fmt.Println()
	fmt.Println("Run 'filedupfinder clean --dry-run' to preview deletions")
	fmt.Println("Run 'filedupfinder clean' to remove duplicates")

	return nil
}

func printSummaryTable(groups []*models.DuplicateGroup) {
	fmt.Printf("%-24s  %-6s  %-12s  %s\n", "Group", "Files", "Reclaimable", "Keep (best quality)")
	fmt.Println(strings.Repeat("-", 78))

	for _, group := range groups {
		var reclaimable int64
		for _, f := range group.Remove {
			reclaimable += f.FileSize
		}

		keepName := filepath.Base(group.Keep.Path)
		if len(keepName) > 35 {
			keepName = keepName[:32] + "..."
		}

		fmt.Printf("%-24s  %-6d  %-12s  %s\n",
			shortKey(group.Key), len(group.Files), formatSize(reclaimable), keepName)
	}
	fmt.Println()
}

func printGroup(group *models.DuplicateGroup, verbose bool) {
	fmt.Printf("Group %s (%d files)\n", shortKey(group.Key), len(group.Files))
	fmt.Println(strings.Repeat("-", 60))

	keepMark := color.New(color.FgGreen).Sprint("✓")
	removeMark := color.New(color.FgRed).Sprint("✗")

	for _, f := range group.Files {
		marker := removeMark
		if f.Path == group.Keep.Path {
			marker = keepMark
		}

		if verbose {
			fmt.Printf("  %s %s\n", marker, f.Path)
			if f.IsImage {
				fmt.Printf("      Resolution: %dx%d  Format: %s  Size: %s\n",
					f.Width, f.Height, strings.ToUpper(f.Format), formatSize(f.FileSize))
			} else {
				fmt.Printf("      Size: %s  Modified: %s\n",
					formatSize(f.FileSize), f.ModTime.Format("2006-01-02 15:04:05"))
			}
			fmt.Printf("      Score: %.0f\n", f.Score)
		} else {
			fmt.Printf("  %s %-44s  %10s  Score: %.0f\n",
				marker, shortenPath(f.Path, 44), formatSize(f.FileSize), f.Score)
		}
	}
	fmt.Println()
}

// shortKey truncates long hash keys for display
func shortKey(key string) string {
	if len(key) > 20 {
		return key[:12] + "..."
	}
	return key
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	// Try to show filename and as much of the path as possible
	dir, file := filepath.Split(path)
	if len(file) >= maxLen-3 {
		return "..." + file[len(file)-(maxLen-3):]
	}

	remaining := maxLen - len(file) - 4 // 4 for ".../"
	if remaining > 0 && len(dir) > remaining {
		dir = dir[len(dir)-remaining:]
	}
	return "..." + dir + file
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
