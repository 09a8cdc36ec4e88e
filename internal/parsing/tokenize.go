package parsing

import (
	"regexp"
	"strings"
)

// CandidateItem is a tokenized (name, quantity) pair extracted from one
// receipt line, prior to normalization. Quantity stays a string here; the
// enrichment step parses it.
type CandidateItem struct {
	ReceiptName string
	Quantity    string
}

var (
	// trailingPrice matches a price anchored at the end of a line,
	// e.g. "$3.99" or "12.50".
	trailingPrice = regexp.MustCompile(`\$?\d+\.\d{2}$`)

	// leadingQuantity matches a quantity prefix like "2 " or "3x ".
	leadingQuantity = regexp.MustCompile(`(?i)^(\d+)x?\s+`)
)

// TokenizeLine extracts a CandidateItem from one surviving receipt line.
// The trailing price is stripped first, then a leading quantity token;
// receipt lines put price at the end and quantity at the start, and
// stripping in the other order can match quantity digits inside a price.
// Returns false when no usable item name remains.
func TokenizeLine(line string) (CandidateItem, bool) {
	name := line

	if loc := trailingPrice.FindStringIndex(name); loc != nil {
		name = strings.TrimSpace(name[:loc[0]])
	}

	quantity := "1"
	if m := leadingQuantity.FindStringSubmatch(name); m != nil {
		quantity = m[1]
		name = name[len(m[0]):]
	}

	name = strings.TrimSpace(name)
	if len(name) <= 2 {
		return CandidateItem{}, false
	}

	return CandidateItem{ReceiptName: name, Quantity: quantity}, true
}
