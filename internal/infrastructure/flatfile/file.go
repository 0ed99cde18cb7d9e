package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
	log "github.com/sirupsen/logrus"
)

// ReadFile loads a nutrition table, choosing JSON for .json files and CSV otherwise.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if isJSON(path) {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}

// WriteRankedFile writes ranked rows to path in the format its extension names.
func WriteRankedFile(path string, columns []string, rows []domain.RankedRow) error {
	return writeFile(path, len(rows), func(f *os.File) error {
		if isJSON(path) {
			return WriteRankedJSON(f, rows)
		}
		return WriteRankedCSV(f, columns, rows)
	})
}

// WriteRowsFile writes collected rows to path in the format its extension names.
func WriteRowsFile(path string, rows []domain.ProductNutritionRow) error {
	return writeFile(path, len(rows), func(f *os.File) error {
		if isJSON(path) {
			return WriteRowsJSON(f, rows)
		}
		return WriteCSV(f, &Table{Columns: ColumnsFor(rows), Rows: rows})
	})
}

// WriteProductsFile writes raw products as JSON (.json) or as the text report.
func WriteProductsFile(path string, products []domain.Product) error {
	return writeFile(path, len(products), func(f *os.File) error {
		if isJSON(path) {
			return WriteProductsJSON(f, products)
		}
		return WriteProductsReport(f, products)
	})
}

func writeFile(path string, count int, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"file":  path,
		"count": count,
	}).Info("file written")
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
