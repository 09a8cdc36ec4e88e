package pantry

import (
	"time"

	"github.com/pantrykit/pantry-tracker/internal/mealplan"
)

// PantryItem is a food item in one user's pantry. ItemName is the
// canonical name shared with the knowledge cache; ReceiptName preserves
// what the receipt actually said.
type PantryItem struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ItemName        string     `json:"item_name"`
	ReceiptName     string     `json:"receipt_name,omitempty"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit,omitempty"`
	Category        string     `json:"category,omitempty"`
	Perishable      bool       `json:"perishable"`
	ExpiryDays      *int       `json:"expiry_days,omitempty"`
	EstimatedExpiry *time.Time `json:"estimated_expiry,omitempty"`
	Calories        *float64   `json:"calories,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MealPlan is a saved meal plan belonging to one user
type MealPlan struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Meals       []mealplan.Meal `json:"meals"`
	CreatedAt   time.Time       `json:"created_at"`
}
