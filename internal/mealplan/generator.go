package mealplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/pantrykit/pantry-tracker/internal/llm"
)

// maxPromptItems caps the pantry summary to keep prompts inside model
// token limits
const maxPromptItems = 30

const generateSystemPrompt = `You are a meal planning expert. Create a meal plan in JSON format.
Return a JSON object with a "meals" array. Each meal must have:
- date: ISO date string (YYYY-MM-DD)
- meal_type: "breakfast", "lunch", or "dinner"
- name: meal name
- description: brief description
- ingredients: array of {"item_name", "quantity", "unit"} with quantity as a string
- directions: array of step-by-step instructions
- prep_time: e.g. "15 minutes"
- cook_time: e.g. "30 minutes"
- servings: number of servings
- calories: estimated total calories
Prioritize using the available pantry items. Do not include any text before or after the JSON.`

// Generator produces meal plans from pantry contents via a single
// templated completion round trip
type Generator struct {
	completer llm.Completer
}

// NewGenerator creates a new Generator
func NewGenerator(completer llm.Completer) *Generator {
	return &Generator{completer: completer}
}

// generateResponse is the JSON shape expected back from the model
type generateResponse struct {
	Meals []Meal `json:"meals"`
}

// Generate asks the model for a numDays meal plan built around the given
// pantry items and user guidelines
func (g *Generator) Generate(ctx context.Context, guidelines string, pantry []PantryEntry, numDays int) ([]Meal, error) {
	if numDays <= 0 {
		numDays = 7
	}

	var summary strings.Builder
	for i, entry := range pantry {
		if i >= maxPromptItems {
			break
		}
		fmt.Fprintf(&summary, "- %s: %g %s\n", entry.ItemName, entry.Quantity, entry.Unit)
	}
	if summary.Len() == 0 {
		summary.WriteString("(pantry is empty)\n")
	}

	prompt := fmt.Sprintf(
		"Create a %d-day meal plan with these guidelines: %s\n\nAvailable pantry items:\n%s",
		numDays, guidelines, summary.String(),
	)

	var resp generateResponse
	if err := llm.CompleteJSON(ctx, g.completer, generateSystemPrompt, prompt, &resp); err != nil {
		return nil, fmt.Errorf("generating meal plan: %w", err)
	}

	if len(resp.Meals) == 0 {
		return nil, fmt.Errorf("meal plan generation returned no meals")
	}

	return resp.Meals, nil
}
