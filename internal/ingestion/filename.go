// Package ingestion loads price and discount snapshot files from a data
// directory into a catalog snapshot.
package ingestion

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// ErrUnrecognizedFile is returned for files that do not follow the
// snapshot naming scheme.
var ErrUnrecognizedFile = errors.New("unrecognized snapshot file name")

var (
	// <store>_discounts_<YYYY-MM-DD>.<ext>
	discountFileName = regexp.MustCompile(`(?i)^([^_]+)_discounts_(\d{4}-\d{2}-\d{2})\.(csv|xlsx)$`)
	// <store>_<YYYY-MM-DD>.<ext>
	priceFileName = regexp.MustCompile(`(?i)^([^_]+)_(\d{4}-\d{2}-\d{2})\.(csv|xlsx)$`)
)

// FileInfo is what a snapshot file name tells about its contents.
type FileInfo struct {
	Path  string
	Store string
	Date  time.Time
	Kind  types.FileKind
	Type  types.FileType
}

// ParseFileName classifies a snapshot file by its base name.
func ParseFileName(path string) (FileInfo, error) {
	base := filepath.Base(path)

	kind := types.FileKindDiscounts
	m := discountFileName.FindStringSubmatch(base)
	if m == nil {
		kind = types.FileKindPrices
		m = priceFileName.FindStringSubmatch(base)
	}
	if m == nil {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrUnrecognizedFile, base)
	}

	date, err := types.ParseDay(m[2])
	if err != nil {
		return FileInfo{}, fmt.Errorf("%w: %s: %v", ErrUnrecognizedFile, base, err)
	}

	return FileInfo{
		Path:  path,
		Store: m[1],
		Date:  date,
		Kind:  kind,
		Type:  types.FileType(strings.ToLower(m[3])),
	}, nil
}
