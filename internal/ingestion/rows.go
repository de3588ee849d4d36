package ingestion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kosarica/price-comparator/internal/types"
)

var (
	priceColumns = []string{
		"product_id", "product_name", "product_category", "brand",
		"package_quantity", "package_unit", "price", "currency",
	}
	discountColumns = []string{
		"product_id", "product_name", "brand", "package_quantity", "package_unit",
		"product_category", "from_date", "to_date", "percentage_of_discount",
	}
)

// rowError describes why a row was rejected.
type rowError struct {
	field string
	value string
	msg   string
}

// recordFields maps record field names to snapshot column names.
var recordFields = map[string]string{
	"price":                "price",
	"packageQuantity":      "package_quantity",
	"percentageOfDiscount": "percentage_of_discount",
	"endingDate":           "to_date",
}

// mapRows turns raw rows (header first) into typed records. Rejected rows
// are reported in the result and never returned as records. lines holds
// the source line of each row; nil means row i is on line i+1.
func mapRows(rows [][]string, lines []int, info FileInfo) *types.ParseResult {
	result := &types.ParseResult{
		Errors:   make([]types.ParseError, 0),
		Warnings: make([]types.ParseWarning, 0),
	}
	if len(rows) == 0 {
		return result
	}

	want := priceColumns
	if info.Kind == types.FileKindDiscounts {
		want = discountColumns
	}
	indices, matched := columnIndices(rows[0], want)
	if !matched {
		result.Warnings = append(result.Warnings, types.ParseWarning{
			RowNumber: types.IntPtr(1),
			Message:   "header does not name the expected columns, using positional mapping",
		})
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNumber := i + 1
		if lines != nil {
			rowNumber = lines[i]
		}
		if isEmptyRow(row) {
			continue
		}
		result.TotalRows++

		col := func(name string) string {
			idx := indices[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		var err *rowError
		if info.Kind == types.FileKindDiscounts {
			var d types.DiscountRecord
			d, err = discountRow(col, info)
			if err == nil {
				result.Discounts = append(result.Discounts, d)
			}
		} else {
			var p types.PriceRecord
			p, err = priceRow(col, info)
			if err == nil {
				result.Prices = append(result.Prices, p)
			}
		}

		if err != nil {
			result.Errors = append(result.Errors, types.ParseError{
				RowNumber:     types.IntPtr(rowNumber),
				Field:         types.StringPtr(err.field),
				Message:       err.msg,
				OriginalValue: types.StringPtr(err.value),
			})
			continue
		}
		result.ValidRows++
	}

	return result
}

func priceRow(col func(string) string, info FileInfo) (types.PriceRecord, *rowError) {
	p := types.PriceRecord{
		ProductID:   col("product_id"),
		ProductName: col("product_name"),
		Category:    col("product_category"),
		Brand:       col("brand"),
		PackageUnit: col("package_unit"),
		Currency:    col("currency"),
		StoreName:   info.Store,
		Date:        info.Date,
	}
	if p.ProductID == "" {
		return p, &rowError{field: "product_id", msg: "is required"}
	}

	var err *rowError
	if p.PackageQuantity, err = number(col, "package_quantity", true); err != nil {
		return p, err
	}
	if p.Price, err = number(col, "price", false); err != nil {
		return p, err
	}
	if verr := p.Validate(0); verr != nil {
		return p, invalidRecord(verr)
	}
	return p, nil
}

func discountRow(col func(string) string, info FileInfo) (types.DiscountRecord, *rowError) {
	d := types.DiscountRecord{
		ProductID:   col("product_id"),
		ProductName: col("product_name"),
		Brand:       col("brand"),
		PackageUnit: col("package_unit"),
		Category:    col("product_category"),
		StoreName:   info.Store,
	}
	if d.ProductID == "" {
		return d, &rowError{field: "product_id", msg: "is required"}
	}

	var err *rowError
	if d.PackageQuantity, err = number(col, "package_quantity", true); err != nil {
		return d, err
	}
	if d.PercentageOfDiscount, err = number(col, "percentage_of_discount", false); err != nil {
		return d, err
	}

	var perr error
	if d.StartDate, perr = types.ParseDay(col("from_date")); perr != nil {
		return d, &rowError{field: "from_date", value: col("from_date"), msg: "invalid date"}
	}
	if d.EndingDate, perr = types.ParseDay(col("to_date")); perr != nil {
		return d, &rowError{field: "to_date", value: col("to_date"), msg: "invalid date"}
	}
	if verr := d.Validate(0); verr != nil {
		return d, invalidRecord(verr)
	}
	return d, nil
}

func invalidRecord(err error) *rowError {
	var re *types.RecordError
	if errors.As(err, &re) {
		return &rowError{field: recordFields[re.Field], msg: re.Reason}
	}
	return &rowError{msg: err.Error()}
}

// number parses a decimal that may use a comma as decimal separator.
func number(col func(string) string, field string, optional bool) (float64, *rowError) {
	raw := col(field)
	if raw == "" {
		if optional {
			return 0, nil
		}
		return 0, &rowError{field: field, msg: "is required"}
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, &rowError{field: field, value: raw, msg: fmt.Sprintf("invalid number: %v", err)}
	}
	return v, nil
}

// columnIndices maps column names to positions using the header. When the
// header does not name every column the positional order is used.
func columnIndices(header []string, want []string) (map[string]int, bool) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	indices := make(map[string]int, len(want))
	for _, name := range want {
		idx, ok := byName[name]
		if !ok {
			for i, n := range want {
				indices[n] = i
			}
			return indices, false
		}
		indices[name] = idx
	}
	return indices, true
}

func isEmptyRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
