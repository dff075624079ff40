package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-scripts/constituents/internal/types"
)

// SummaryFilename is the name of the per-run outcome table
const SummaryFilename = "scraping_summary.csv"

var summaryHeader = []string{"category", "url", "success", "timestamp"}

// FileWriter handles writing downloads and summaries to an output directory
type FileWriter struct {
	outputDir string
}

// New creates a new FileWriter instance, creating outputDir if needed
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Dir returns the output directory
func (w *FileWriter) Dir() string {
	return w.outputDir
}

// Create truncates or creates filename inside the output directory. The
// caller closes the file.
func (w *FileWriter) Create(filename string) (*os.File, string, error) {
	path := filepath.Join(w.outputDir, filepath.Base(filename))

	file, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}
	return file, path, nil
}

// WriteSummary writes the outcome sequence as CSV and returns the file path
func (w *FileWriter) WriteSummary(outcomes []types.Outcome) (string, error) {
	file, path, err := w.Create(SummaryFilename)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(summaryHeader); err != nil {
		return "", fmt.Errorf("failed to write summary header: %w", err)
	}
	for _, o := range outcomes {
		record := []string{
			o.Category,
			o.URL,
			strconv.FormatBool(o.Success),
			o.Timestamp.Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return "", fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush summary: %w", err)
	}
	return path, file.Close()
}

// ReadSummary loads a summary written by WriteSummary
func ReadSummary(path string) ([]types.Outcome, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("summary %s has no header", path)
	}

	outcomes := make([]types.Outcome, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(summaryHeader) {
			return nil, fmt.Errorf("summary row %d: expected %d fields, got %d", i+1, len(summaryHeader), len(rec))
		}
		ok, err := strconv.ParseBool(rec[2])
		if err != nil {
			return nil, fmt.Errorf("summary row %d: %w", i+1, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, rec[3])
		if err != nil {
			return nil, fmt.Errorf("summary row %d: %w", i+1, err)
		}
		outcomes = append(outcomes, types.Outcome{
			Category:  rec[0],
			URL:       rec[1],
			Success:   ok,
			Timestamp: ts,
		})
	}
	return outcomes, nil
}

// CategoryDir maps a category name to its subdirectory of root,
// e.g. "Sectoral Indices" -> root/sectoral_indices
func CategoryDir(root, category string) string {
	return filepath.Join(root, sanitizeDirname(category))
}

func sanitizeDirname(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	for _, char := range unsafe {
		name = strings.ReplaceAll(name, char, "_")
	}
	if name == "" || name == "." || name == ".." {
		return "uncategorized"
	}
	return name
}
