package usecase

import (
	"fmt"
	"io"
	"strconv"

	"github.com/caloriecart/backend/internal/domain"
)

// FormatReport prints each ranked row as its description followed by a
// tab-indented calories per dollar line.
func FormatReport(w io.Writer, rows []domain.RankedRow) error {
	for _, row := range rows {
		value := "n/a"
		if row.Valid {
			value = strconv.FormatFloat(row.CaloriesPerDollar, 'f', -1, 64)
		}
		if _, err := fmt.Fprintf(w, "%s\n\t%s\n", row.Description, value); err != nil {
			return err
		}
	}
	return nil
}
