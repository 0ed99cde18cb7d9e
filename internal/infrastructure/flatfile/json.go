package flatfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/caloriecart/backend/internal/domain"
)

// ReadJSON decodes an array of nutrition rows.
func ReadJSON(r io.Reader) (*Table, error) {
	var rows []domain.ProductNutritionRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	return &Table{Columns: ColumnsFor(rows), Rows: rows}, nil
}

// WriteRankedJSON writes ranked rows as an indented JSON array.
func WriteRankedJSON(w io.Writer, rows []domain.RankedRow) error {
	if rows == nil {
		rows = []domain.RankedRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteRowsJSON writes unranked rows as an indented JSON array.
func WriteRowsJSON(w io.Writer, rows []domain.ProductNutritionRow) error {
	if rows == nil {
		rows = []domain.ProductNutritionRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteProductsJSON writes raw catalog products as an indented JSON array.
func WriteProductsJSON(w io.Writer, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(products)
}
