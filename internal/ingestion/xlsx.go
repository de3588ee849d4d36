package ingestion

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kosarica/price-comparator/internal/types"
)

// ParseXLSX parses the first sheet of an XLSX snapshot. The first row is a
// header, as in CSV snapshots.
func ParseXLSX(content []byte, info FileInfo) (*types.ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX %s: %w", info.Path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX %s has no sheets", info.Path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], info.Path, err)
	}
	return mapRows(rows, nil, info), nil
}
