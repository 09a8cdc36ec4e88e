package parsing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultStopTerms covers receipt boilerplate common to most US grocery
// receipts: totals, tax lines, payment methods, greetings and headers.
var defaultStopTerms = []string{
	"total",
	"subtotal",
	"tax",
	"change",
	"cash",
	"credit",
	"debit",
	"thank you",
	"receipt",
	"store",
	"date",
	"time",
}

// Stoplist filters receipt boilerplate lines during segmentation
type Stoplist struct {
	terms []string
}

// NewStoplist creates a Stoplist from the built-in boilerplate terms
func NewStoplist() *Stoplist {
	return &Stoplist{terms: defaultStopTerms}
}

// stoplistFile is the YAML shape for store-specific boilerplate terms
type stoplistFile struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist reads additional boilerplate terms from a YAML file and
// appends them to the built-in set
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stoplist file: %w", err)
	}

	var file stoplistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing stoplist file: %w", err)
	}

	terms := make([]string, 0, len(defaultStopTerms)+len(file.Terms))
	terms = append(terms, defaultStopTerms...)
	for _, t := range file.Terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}

	return &Stoplist{terms: terms}, nil
}

// Matches reports whether the line contains any boilerplate term.
// Matching is case-insensitive substring matching on the whole line.
func (s *Stoplist) Matches(line string) bool {
	lower := strings.ToLower(line)
	for _, term := range s.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
