package types

// FileType represents supported snapshot file types
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// FileKind tells price snapshots apart from discount snapshots
type FileKind string

const (
	FileKindPrices    FileKind = "prices"
	FileKindDiscounts FileKind = "discounts"
)

// ParseError represents a parsing error
type ParseError struct {
	RowNumber     *int    `json:"rowNumber,omitempty"`
	Field         *string `json:"field,omitempty"`
	Message       string  `json:"message"`
	OriginalValue *string `json:"originalValue,omitempty"`
}

// ParseWarning represents a parsing warning
type ParseWarning struct {
	RowNumber *int    `json:"rowNumber,omitempty"`
	Field     *string `json:"field,omitempty"`
	Message   string  `json:"message"`
}

// ParseResult represents result of parsing one snapshot file
type ParseResult struct {
	Prices    []PriceRecord    `json:"prices,omitempty"`
	Discounts []DiscountRecord `json:"discounts,omitempty"`
	Errors    []ParseError     `json:"errors,omitempty"`
	Warnings  []ParseWarning   `json:"warnings,omitempty"`
	TotalRows int              `json:"totalRows"`
	ValidRows int              `json:"validRows"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
