package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsxContent(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSXPrices(t *testing.T) {
	content := xlsxContent(t, [][]any{
		{"product_id", "product_name", "product_category", "brand", "package_quantity", "package_unit", "price", "currency"},
		{"P001", "lapte zuzu", "lactate", "Zuzu", "1", "l", "9.90", "RON"},
		{"P002", "iaurt", "lactate", "Olympus", "0.4", "kg", "abc", "RON"},
	})
	info, err := ParseFileName("kaufland_2025-05-01.xlsx")
	require.NoError(t, err)

	result, err := ParseXLSX(content, info)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.ValidRows)
	require.Len(t, result.Prices, 1)
	assert.Equal(t, "kaufland", result.Prices[0].StoreName)
	assert.Equal(t, 9.9, result.Prices[0].Price)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, *result.Errors[0].RowNumber)
	assert.Equal(t, "price", *result.Errors[0].Field)
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	info, err := ParseFileName("kaufland_2025-05-01.xlsx")
	require.NoError(t, err)

	_, err = ParseXLSX([]byte("not a workbook"), info)

	assert.Error(t, err)
}
