package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pantrykit/pantry-tracker/internal/llm"
)

// DetailSource looks up typical attributes of a food item
type DetailSource interface {
	// Details never fails; when the lookup is unavailable it returns
	// DefaultDetails
	Details(ctx context.Context, itemName string) ItemDetails
}

// DefaultDetails returns the safe fallback attributes used whenever the
// detail lookup fails: a short expiry window and perishable, so nothing
// sits in the pantry untracked.
func DefaultDetails() ItemDetails {
	days := 7
	calories := 100.0
	return ItemDetails{
		TypicalExpiryDays: &days,
		Perishable:        true,
		Category:          "unknown",
		TypicalUnit:       "piece",
		CaloriesPerUnit:   &calories,
	}
}

const detailSystemPrompt = `You are a food expert. Provide detailed information about food items in JSON format.
Return a JSON object with these fields:
- typical_expiry_days: typical days until expiry (integer)
- perishable: true/false
- category: category like "fruit", "vegetable", "dairy", "meat", "grain", etc.
- typical_unit: common unit like "piece", "lb", "oz", "kg", etc.
- calories_per_unit: approximate calories per unit (number)
Do not include any text before or after the JSON.`

// detailResponse is the JSON shape expected back from the model. Pointer
// fields distinguish missing from zero so validation can fill defaults.
type detailResponse struct {
	TypicalExpiryDays *int     `json:"typical_expiry_days"`
	Perishable        *bool    `json:"perishable"`
	Category          string   `json:"category"`
	TypicalUnit       string   `json:"typical_unit"`
	CaloriesPerUnit   *float64 `json:"calories_per_unit"`
}

// LLMDetailSource implements DetailSource using a text-completion model
type LLMDetailSource struct {
	completer llm.Completer
}

// NewLLMDetailSource creates a new LLMDetailSource
func NewLLMDetailSource(completer llm.Completer) *LLMDetailSource {
	return &LLMDetailSource{completer: completer}
}

// Details asks the model for item attributes, validating each field and
// substituting defaults for anything missing or malformed
func (d *LLMDetailSource) Details(ctx context.Context, itemName string) ItemDetails {
	prompt := fmt.Sprintf("Provide details for: %s", itemName)

	var resp detailResponse
	if err := llm.CompleteJSON(ctx, d.completer, detailSystemPrompt, prompt, &resp); err != nil {
		slog.Warn("Failed to look up item details, using defaults",
			"item_name", itemName,
			"error", err,
		)
		return DefaultDetails()
	}

	details := DefaultDetails()
	if resp.TypicalExpiryDays != nil && *resp.TypicalExpiryDays > 0 {
		details.TypicalExpiryDays = resp.TypicalExpiryDays
	}
	if resp.Perishable != nil {
		details.Perishable = *resp.Perishable
	}
	if category := strings.TrimSpace(resp.Category); category != "" {
		details.Category = category
	}
	if unit := strings.TrimSpace(resp.TypicalUnit); unit != "" {
		details.TypicalUnit = unit
	}
	if resp.CaloriesPerUnit != nil && *resp.CaloriesPerUnit > 0 {
		details.CaloriesPerUnit = resp.CaloriesPerUnit
	}
	return details
}
