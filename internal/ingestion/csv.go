package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/kosarica/price-comparator/internal/types"
)

// ParseCSV decodes and parses one CSV snapshot. The first row is a header.
func ParseCSV(content []byte, info FileInfo, enc Encoding) (*types.ParseResult, error) {
	decoded, err := Decode(content, enc)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(decoded))
	r.Comma = DetectDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV %s: %w", info.Path, err)
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return mapRows(rows, lines, info), nil
}
