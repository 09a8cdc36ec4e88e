package pantry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pantrykit/pantry-tracker/internal/enrichment"
	"github.com/pantrykit/pantry-tracker/internal/mealplan"
	"github.com/pantrykit/pantry-tracker/internal/scanning"
)

// IDGenerator generates unique IDs for stored records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// ulidGenerator generates lexicographically sortable ULIDs
type ulidGenerator struct{}

func (g *ulidGenerator) Generate() string {
	return ulid.Make().String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanResult is the outcome of scanning one receipt
type ScanResult struct {
	Items   []*PantryItem `json:"items"`
	Message string        `json:"message"`
}

// Service handles pantry operations
type Service struct {
	db          DB
	extractor   scanning.Extractor
	enricher    *enrichment.Enricher
	generator   *mealplan.Generator
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, extractor scanning.Extractor, enricher *enrichment.Enricher, generator *mealplan.Generator) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		enricher:    enricher,
		generator:   generator,
		idGenerator: &ulidGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor scanning.Extractor, enricher *enrichment.Enricher, generator *mealplan.Generator, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		enricher:    enricher,
		generator:   generator,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ScanReceipt extracts text from a receipt image, enriches the items, and
// saves each one to the user's pantry. A failure saving one item skips
// that item only; the remaining items still land.
func (s *Service) ScanReceipt(ctx context.Context, userID string, imageData []byte, contentType string) (*ScanResult, error) {
	text, err := s.extractor.ExtractText(imageData, contentType)
	if err != nil {
		slog.Error("Failed to extract receipt text",
			"user_id", userID,
			"content_type", contentType,
			"file_size", len(imageData),
			"error", err,
		)
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, enrichment.ErrExtractionEmpty
	}

	enriched, err := s.enricher.EnrichReceipt(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("enriching receipt: %w", err)
	}

	now := s.timeSource.Now()
	saved := make([]*PantryItem, 0, len(enriched))
	for _, e := range enriched {
		item := &PantryItem{
			ID:              s.idGenerator.Generate(),
			UserID:          userID,
			ItemName:        e.CanonicalName,
			ReceiptName:     e.ReceiptName,
			Quantity:        e.Quantity,
			Unit:            e.Unit,
			Category:        e.Category,
			Perishable:      e.Perishable,
			ExpiryDays:      e.ExpiryDays,
			EstimatedExpiry: e.EstimatedExpiry,
			Calories:        e.Calories,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.db.SavePantryItem(item); err != nil {
			slog.Warn("Failed to save scanned item, skipping",
				"user_id", userID,
				"item_name", e.CanonicalName,
				"error", err,
			)
			continue
		}
		saved = append(saved, item)
	}

	return &ScanResult{
		Items:   saved,
		Message: fmt.Sprintf("Successfully added %d items to your pantry", len(saved)),
	}, nil
}

// AddPantryItem saves a manually entered item, filling gaps from the
// knowledge cache when the item is already known and feeding the cache
// when it is not
func (s *Service) AddPantryItem(item *PantryItem) (*PantryItem, error) {
	if strings.TrimSpace(item.ItemName) == "" {
		return nil, fmt.Errorf("item name is required")
	}

	now := s.timeSource.Now()
	item.ID = s.idGenerator.Generate()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	record, err := s.db.LookupKnowledge(item.ItemName)
	if err != nil {
		return nil, fmt.Errorf("looking up knowledge: %w", err)
	}
	if record != nil {
		if item.ExpiryDays == nil {
			item.ExpiryDays = record.TypicalExpiryDays
		}
		if item.Category == "" {
			item.Category = record.Category
		}
		if item.Unit == "" {
			item.Unit = record.TypicalUnit
		}
		if err := s.db.RecordKnowledgeUsage(item.ItemName); err != nil {
			return nil, fmt.Errorf("recording knowledge usage: %w", err)
		}
	} else {
		details := enrichment.ItemDetails{
			TypicalExpiryDays: item.ExpiryDays,
			Perishable:        item.Perishable,
			Category:          item.Category,
			TypicalUnit:       item.Unit,
		}
		if item.Calories != nil && item.Quantity > 0 {
			perUnit := *item.Calories / item.Quantity
			details.CaloriesPerUnit = &perUnit
		}
		if _, err := s.db.LearnKnowledge(item.ItemName, details); err != nil {
			return nil, fmt.Errorf("learning knowledge: %w", err)
		}
	}

	if item.ExpiryDays != nil && item.EstimatedExpiry == nil {
		expiry := now.AddDate(0, 0, *item.ExpiryDays)
		item.EstimatedExpiry = &expiry
	}

	if err := s.db.SavePantryItem(item); err != nil {
		return nil, fmt.Errorf("saving pantry item: %w", err)
	}
	return item, nil
}

// GetPantryItem retrieves one of a user's pantry items
func (s *Service) GetPantryItem(userID, id string) (*PantryItem, error) {
	item, err := s.db.GetPantryItem(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting pantry item: %w", err)
	}
	return item, nil
}

// ListPantryItems returns all pantry items for a user
func (s *Service) ListPantryItems(userID string) ([]*PantryItem, error) {
	items, err := s.db.ListPantryItems(userID)
	if err != nil {
		return nil, fmt.Errorf("listing pantry items: %w", err)
	}
	return items, nil
}

// PantryItemUpdate carries the fields of a pantry item update; nil fields
// are left unchanged
type PantryItemUpdate struct {
	ItemName   *string  `json:"item_name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	Category   *string  `json:"category"`
	Perishable *bool    `json:"perishable"`
	ExpiryDays *int     `json:"expiry_days"`
	Calories   *float64 `json:"calories"`
}

// UpdatePantryItem applies a partial update to one of a user's pantry
// items, recomputing the expiry date when the expiry window changes
func (s *Service) UpdatePantryItem(userID, id string, update PantryItemUpdate) (*PantryItem, error) {
	item, err := s.db.GetPantryItem(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting pantry item for update: %w", err)
	}

	if update.ItemName != nil {
		item.ItemName = *update.ItemName
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.Unit != nil {
		item.Unit = *update.Unit
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.Perishable != nil {
		item.Perishable = *update.Perishable
	}
	if update.Calories != nil {
		item.Calories = update.Calories
	}
	if update.ExpiryDays != nil {
		item.ExpiryDays = update.ExpiryDays
		expiry := s.timeSource.Now().AddDate(0, 0, *update.ExpiryDays)
		item.EstimatedExpiry = &expiry
	}
	item.UpdatedAt = s.timeSource.Now()

	if err := s.db.SavePantryItem(item); err != nil {
		return nil, fmt.Errorf("saving pantry item: %w", err)
	}
	return item, nil
}

// DeletePantryItem removes one of a user's pantry items
func (s *Service) DeletePantryItem(userID, id string) error {
	if err := s.db.DeletePantryItem(userID, id); err != nil {
		return fmt.Errorf("deleting pantry item: %w", err)
	}
	return nil
}

// GenerateMealPlan builds a meal plan from the user's current pantry and
// saves it
func (s *Service) GenerateMealPlan(ctx context.Context, userID, guidelines string, numDays int) (*MealPlan, error) {
	items, err := s.db.ListPantryItems(userID)
	if err != nil {
		return nil, fmt.Errorf("listing pantry items: %w", err)
	}

	entries := make([]mealplan.PantryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, mealplan.PantryEntry{
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}

	meals, err := s.generator.Generate(ctx, guidelines, entries, numDays)
	if err != nil {
		return nil, fmt.Errorf("generating meal plan: %w", err)
	}

	now := s.timeSource.Now()
	plan := &MealPlan{
		ID:          s.idGenerator.Generate(),
		UserID:      userID,
		Name:        fmt.Sprintf("AI Generated Plan - %s", now.Format("2006-01-02")),
		Description: guidelines,
		Meals:       meals,
		CreatedAt:   now,
	}

	if err := s.db.SaveMealPlan(plan); err != nil {
		return nil, fmt.Errorf("saving meal plan: %w", err)
	}
	return plan, nil
}

// GetMealPlan retrieves one of a user's meal plans
func (s *Service) GetMealPlan(userID, id string) (*MealPlan, error) {
	plan, err := s.db.GetMealPlan(userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting meal plan: %w", err)
	}
	return plan, nil
}

// ListMealPlans returns all meal plans for a user
func (s *Service) ListMealPlans(userID string) ([]*MealPlan, error) {
	plans, err := s.db.ListMealPlans(userID)
	if err != nil {
		return nil, fmt.Errorf("listing meal plans: %w", err)
	}
	return plans, nil
}

// DeleteMealPlan removes one of a user's meal plans
func (s *Service) DeleteMealPlan(userID, id string) error {
	if err := s.db.DeleteMealPlan(userID, id); err != nil {
		return fmt.Errorf("deleting meal plan: %w", err)
	}
	return nil
}
