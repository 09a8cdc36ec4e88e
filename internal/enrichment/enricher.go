package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pantrykit/pantry-tracker/internal/parsing"
)

var (
	// ErrExtractionEmpty means optical extraction returned no usable text;
	// the receipt is rejected wholesale
	ErrExtractionEmpty = errors.New("could not extract text from image")

	// ErrNoCandidateItems means segmentation and tokenization produced no
	// surviving items; the receipt is rejected wholesale
	ErrNoCandidateItems = errors.New("could not find any items in the receipt")
)

// EnrichedItem is a fully populated pantry item ready for persistence
type EnrichedItem struct {
	CanonicalName   string
	ReceiptName     string
	Quantity        float64
	ExpiryDays      *int
	EstimatedExpiry *time.Time
	Perishable      bool
	Category        string
	Unit            string
	Calories        *float64
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Enricher turns raw receipt text into enriched pantry items by chaining
// segmentation, tokenization, name normalization, and the knowledge cache
type Enricher struct {
	stoplist   *parsing.Stoplist
	normalizer Normalizer
	details    DetailSource
	knowledge  KnowledgeStore
	timeSource TimeSource
}

// NewEnricher creates a new Enricher with the default time source
func NewEnricher(stoplist *parsing.Stoplist, normalizer Normalizer, details DetailSource, knowledge KnowledgeStore) *Enricher {
	return &Enricher{
		stoplist:   stoplist,
		normalizer: normalizer,
		details:    details,
		knowledge:  knowledge,
		timeSource: &defaultTimeSource{},
	}
}

// NewEnricherWithDeps creates a new Enricher with a custom time source for testing
func NewEnricherWithDeps(stoplist *parsing.Stoplist, normalizer Normalizer, details DetailSource, knowledge KnowledgeStore, timeSrc TimeSource) *Enricher {
	return &Enricher{
		stoplist:   stoplist,
		normalizer: normalizer,
		details:    details,
		knowledge:  knowledge,
		timeSource: timeSrc,
	}
}

// EnrichReceipt processes raw receipt text into enriched items. Items are
// processed strictly one at a time: the completion service is rate- and
// cost-sensitive, and the knowledge cache must observe its own writes so a
// name appearing twice on one receipt creates one record, not two. A
// failure on one item skips that item and continues; only zero surviving
// candidates aborts the receipt.
func (e *Enricher) EnrichReceipt(ctx context.Context, text string) ([]*EnrichedItem, error) {
	lines := parsing.SegmentLines(text, e.stoplist)

	candidates := make([]parsing.CandidateItem, 0, len(lines))
	for _, line := range lines {
		if candidate, ok := parsing.TokenizeLine(line); ok {
			candidates = append(candidates, candidate)
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidateItems
	}

	items := make([]*EnrichedItem, 0, len(candidates))
	for _, candidate := range candidates {
		item, err := e.enrichItem(ctx, candidate)
		if err != nil {
			slog.Warn("Skipping receipt item",
				"receipt_name", candidate.ReceiptName,
				"error", err,
			)
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// enrichItem enriches a single candidate: normalize the name, resolve it
// against the knowledge cache, and compute expiry and calories
func (e *Enricher) enrichItem(ctx context.Context, candidate parsing.CandidateItem) (*EnrichedItem, error) {
	quantity, err := strconv.ParseFloat(candidate.Quantity, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing quantity %q: %w", candidate.Quantity, err)
	}

	canonicalName := e.normalizer.Normalize(ctx, candidate.ReceiptName)

	resolution, err := e.Resolve(ctx, canonicalName)
	if err != nil {
		return nil, err
	}
	record := resolution.Record

	item := &EnrichedItem{
		CanonicalName: canonicalName,
		ReceiptName:   candidate.ReceiptName,
		Quantity:      quantity,
		Perishable:    record.Perishable,
		Category:      record.Category,
		Unit:          record.TypicalUnit,
	}

	if record.TypicalExpiryDays != nil {
		days := *record.TypicalExpiryDays
		expiry := e.timeSource.Now().AddDate(0, 0, days)
		item.ExpiryDays = &days
		item.EstimatedExpiry = &expiry
	}

	if record.CaloriesPerUnit != nil {
		calories := *record.CaloriesPerUnit * quantity
		item.Calories = &calories
	}

	return item, nil
}

// Resolve returns the knowledge record for a canonical name: a cache hit
// increments the usage count, a miss consults the detail source and learns
// the result. The create-or-increment race between concurrent receipts is
// handled inside the store's LearnKnowledge.
func (e *Enricher) Resolve(ctx context.Context, canonicalName string) (*Resolution, error) {
	record, err := e.knowledge.LookupKnowledge(canonicalName)
	if err != nil {
		return nil, fmt.Errorf("looking up knowledge: %w", err)
	}

	if record != nil {
		if err := e.knowledge.RecordKnowledgeUsage(canonicalName); err != nil {
			return nil, fmt.Errorf("recording knowledge usage: %w", err)
		}
		return &Resolution{Record: record, Source: ResolutionCached}, nil
	}

	details := e.details.Details(ctx, canonicalName)
	learned, err := e.knowledge.LearnKnowledge(canonicalName, details)
	if err != nil {
		return nil, fmt.Errorf("learning knowledge: %w", err)
	}
	return &Resolution{Record: learned, Source: ResolutionLearned}, nil
}
