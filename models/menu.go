package models

type Ingredient struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"` // consumed per unit sold
}

type MenuItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       float64      `json:"price"`
	Category    string       `json:"category,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}
