// Package flatfile reads nutrition tables from CSV/JSON and writes ranked
// tables and product dumps back to disk.
package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
)

// Column names of a nutrition table.
const (
	ColumnID                 = "id"
	ColumnDescription        = "description"
	ColumnPrice              = "price"
	ColumnCalories           = "calories"
	ColumnServingsPerPackage = "servings_per_package"
	ColumnSize               = "size"
	ColumnServingSize        = "serving_size"
	ColumnCaloriesPerDollar  = "calories_per_dollar"
)

// DefaultColumns is the column order used when writing rows that were not read from a file.
var DefaultColumns = []string{
	ColumnID, ColumnDescription, ColumnPrice, ColumnCalories,
	ColumnServingsPerPackage, ColumnSize, ColumnServingSize,
}

var requiredColumns = []string{ColumnDescription, ColumnPrice, ColumnCalories}

// Table is a nutrition table together with its column order.
type Table struct {
	Columns []string
	Rows    []domain.ProductNutritionRow
}

// ColumnsFor returns DefaultColumns followed by every extra key in the rows, sorted.
func ColumnsFor(rows []domain.ProductNutritionRow) []string {
	seen := map[string]bool{}
	var extra []string
	for _, r := range rows {
		for k := range r.Extra {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(append([]string{}, DefaultColumns...), extra...)
}

// ReadCSV decodes a header-led nutrition table. Empty and NaN cells are absent values;
// a missing header, a missing required column or a ragged row is ErrMalformedInput.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", domain.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		index[strings.ToLower(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrMalformedInput, col)
		}
	}

	table := &Table{}
	for _, name := range header {
		if strings.ToLower(name) != ColumnCaloriesPerDollar {
			table.Columns = append(table.Columns, name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}
		table.Rows = append(table.Rows, rowFromRecord(header, record))
	}

	return table, nil
}

func rowFromRecord(header, record []string) domain.ProductNutritionRow {
	var row domain.ProductNutritionRow
	for i, name := range header {
		cell := strings.TrimSpace(record[i])
		switch strings.ToLower(name) {
		case ColumnID:
			row.ID = cell
		case ColumnDescription:
			row.Description = cell
		case ColumnPrice:
			row.Price = parseCell(strings.TrimPrefix(cell, "$"))
		case ColumnCalories:
			row.Calories = parseCell(cell)
		case ColumnServingsPerPackage:
			row.ServingsPerPackage = parseCell(cell)
		case ColumnSize:
			row.Size = textCell(cell)
		case ColumnServingSize:
			row.ServingSize = textCell(cell)
		case ColumnCaloriesPerDollar:
			// recomputed on every ranking
		default:
			if row.Extra == nil {
				row.Extra = map[string]string{}
			}
			row.Extra[name] = record[i]
		}
	}
	return row
}

// parseCell returns nil for empty, NaN-like or non-numeric cells.
func parseCell(cell string) *float64 {
	if textCell(cell) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// textCell maps the spellings pandas and friends use for missing values to "".
func textCell(cell string) string {
	switch strings.ToLower(cell) {
	case "", "nan", "null", "none", "n/a", "na":
		return ""
	}
	return cell
}

// WriteCSV writes a table in its column order.
func WriteCSV(w io.Writer, t *Table) error {
	columns := t.Columns
	if len(columns) == 0 {
		columns = ColumnsFor(t.Rows)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(recordFor(columns, row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankedCSV writes ranked rows with calories_per_dollar appended as the last column.
// Rows without a usable price or calories get an empty calories_per_dollar cell.
func WriteRankedCSV(w io.Writer, columns []string, rows []domain.RankedRow) error {
	if len(columns) == 0 {
		plain := make([]domain.ProductNutritionRow, len(rows))
		for i, r := range rows {
			plain[i] = r.ProductNutritionRow
		}
		columns = ColumnsFor(plain)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, columns...), ColumnCaloriesPerDollar)); err != nil {
		return err
	}
	for _, row := range rows {
		ratio := ""
		if row.Valid {
			ratio = formatFloat(row.CaloriesPerDollar)
		}
		if err := cw.Write(append(recordFor(columns, row.ProductNutritionRow), ratio)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordFor(columns []string, row domain.ProductNutritionRow) []string {
	record := make([]string, len(columns))
	for i, name := range columns {
		switch strings.ToLower(name) {
		case ColumnID:
			record[i] = row.ID
		case ColumnDescription:
			record[i] = row.Description
		case ColumnPrice:
			record[i] = formatOptional(row.Price)
		case ColumnCalories:
			record[i] = formatOptional(row.Calories)
		case ColumnServingsPerPackage:
			record[i] = formatOptional(row.ServingsPerPackage)
		case ColumnSize:
			record[i] = row.Size
		case ColumnServingSize:
			record[i] = row.ServingSize
		default:
			record[i] = row.Extra[name]
		}
	}
	return record
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
