package flatfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `,id,description,price,calories,servings_per_package,size,serving_size,brand
0,001,Kroger Whole Milk,3.49,150,16.0,1 gal,1 cup,Kroger
1,002,Old Fashioned Oats,$4.00,150,,42 oz,40 g,Quaker
2,003,Bananas,0.25,105,NaN,,,
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, []string{"", "id", "description", "price", "calories", "servings_per_package", "size", "serving_size", "brand"}, table.Columns)

	milk := table.Rows[0]
	assert.Equal(t, "001", milk.ID)
	assert.Equal(t, "Kroger Whole Milk", milk.Description)
	assert.Equal(t, 3.49, *milk.Price)
	assert.Equal(t, 150.0, *milk.Calories)
	assert.Equal(t, 16.0, *milk.ServingsPerPackage)
	assert.Equal(t, "1 gal", milk.Size)
	assert.Equal(t, "1 cup", milk.ServingSize)
	assert.Equal(t, "Kroger", milk.Extra["brand"])
	assert.Equal(t, "0", milk.Extra[""])

	oats := table.Rows[1]
	assert.Equal(t, 4.0, *oats.Price)
	assert.Nil(t, oats.ServingsPerPackage)

	bananas := table.Rows[2]
	assert.Nil(t, bananas.ServingsPerPackage)
	assert.Empty(t, bananas.Size)
	assert.Empty(t, bananas.ServingSize)
}

func TestReadCSV_MissingValues(t *testing.T) {
	input := "description,price,calories\nno price,,100\nbad price,abc,100\nnan calories,1,nan\n"
	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Nil(t, table.Rows[0].Price)
	assert.Nil(t, table.Rows[1].Price)
	assert.Nil(t, table.Rows[2].Calories)
}

func TestReadCSV_DropsStaleRatioColumn(t *testing.T) {
	input := "description,price,calories,calories_per_dollar\nmilk,2,100,50\n"
	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"description", "price", "calories"}, table.Columns)
	assert.Nil(t, table.Rows[0].Extra)
}

func TestReadCSV_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing price column", "description,calories\nmilk,100\n"},
		{"missing description column", "price,calories\n1,100\n"},
		{"ragged row", "description,price,calories\nmilk,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, domain.ErrMalformedInput)
		})
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("description,price,calories\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, again.Columns)
	assert.Equal(t, table.Rows[0], again.Rows[0])
	assert.Equal(t, table.Rows[1], again.Rows[1])
}

func TestWriteRankedCSV(t *testing.T) {
	rows := []domain.RankedRow{
		{
			ProductNutritionRow: domain.ProductNutritionRow{
				ID: "1", Description: "Oats", Price: domain.Float(4), Calories: domain.Float(150),
				Extra: map[string]string{"brand": "Quaker"},
			},
			CaloriesPerDollar: 1575,
			Valid:             true,
		},
		{
			ProductNutritionRow: domain.ProductNutritionRow{ID: "2", Description: "Sample", Calories: domain.Float(10)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRankedCSV(&buf, []string{"id", "description", "price", "calories", "brand"}, rows))

	want := "id,description,price,calories,brand,calories_per_dollar\n" +
		"1,Oats,4,150,Quaker,1575\n" +
		"2,Sample,,10,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRankedCSV_DefaultColumns(t *testing.T) {
	rows := []domain.RankedRow{{
		ProductNutritionRow: domain.ProductNutritionRow{Description: "Rice", Price: domain.Float(2), Calories: domain.Float(100), Extra: map[string]string{"upc": "123"}},
		CaloriesPerDollar:   50,
		Valid:               true,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRankedCSV(&buf, nil, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,description,price,calories,servings_per_package,size,serving_size,upc,calories_per_dollar", lines[0])
	assert.Equal(t, ",Rice,2,100,,,,123,50", lines[1])
}

func TestColumnsFor(t *testing.T) {
	rows := []domain.ProductNutritionRow{
		{Extra: map[string]string{"upc": "1", "brand": "b"}},
		{Extra: map[string]string{"brand": "c", "categories": "x"}},
	}
	cols := ColumnsFor(rows)
	assert.Equal(t, append(append([]string{}, DefaultColumns...), "brand", "categories", "upc"), cols)
}
