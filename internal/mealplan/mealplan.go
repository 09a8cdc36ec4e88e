package mealplan

// Meal is a single planned meal within a meal plan
type Meal struct {
	Date        string       `json:"date"` // ISO 8601 format
	MealType    string       `json:"meal_type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Directions  []string     `json:"directions"`
	PrepTime    string       `json:"prep_time"`
	CookTime    string       `json:"cook_time"`
	Servings    int          `json:"servings"`
	Calories    float64      `json:"calories"`
}

// Ingredient references a pantry item used by a meal
type Ingredient struct {
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// PantryEntry is the slice of pantry state the generator needs for its
// prompt
type PantryEntry struct {
	ItemName string
	Quantity float64
	Unit     string
}
