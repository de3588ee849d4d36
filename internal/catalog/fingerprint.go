package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/kosarica/price-comparator/internal/types"
)

// FingerprintVersion changes whenever the canonical form below changes.
const FingerprintVersion = 1

// Fingerprint returns a SHA-256 over the snapshot's records. It ignores
// record order and load time, so reloading unchanged files yields the
// same value.
func (s *Snapshot) Fingerprint() string {
	s.fingerprintOnce.Do(func() {
		s.fingerprint = computeFingerprint(s.prices, s.discounts)
	})
	return s.fingerprint
}

func computeFingerprint(prices []types.PriceRecord, discounts []types.DiscountRecord) string {
	lines := make([]string, 0, len(prices)+len(discounts))
	for _, p := range prices {
		lines = append(lines, strings.Join([]string{
			"p", p.ProductID, p.StoreName, p.Date.Format(types.DateLayout),
			formatFloat(p.Price), p.Currency,
			p.ProductName, p.Category, p.Brand,
			formatFloat(p.PackageQuantity), p.PackageUnit,
		}, "\x1f"))
	}
	for _, d := range discounts {
		lines = append(lines, strings.Join([]string{
			"d", d.ProductID, d.StoreName,
			d.StartDate.Format(types.DateLayout), d.EndingDate.Format(types.DateLayout),
			formatFloat(d.PercentageOfDiscount),
			d.ProductName, d.Category, d.Brand,
			formatFloat(d.PackageQuantity), d.PackageUnit,
		}, "\x1f"))
	}
	// Duplicate records keep their multiplicity after sorting.
	sort.Strings(lines)

	var buf bytes.Buffer
	buf.WriteString("v")
	buf.WriteString(strconv.Itoa(FingerprintVersion))
	buf.WriteByte('\n')
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
