package models

import "time"

type Expense struct {
	ID            string     `json:"id"`
	Category      string     `json:"category,omitempty"`
	Amount        float64    `json:"amount"`
	Date          *time.Time `json:"date,omitempty"`
	Vendor        string     `json:"vendor,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Recurring     bool       `json:"isRecurring"`
}

// FeedbackCategories holds optional 1-5 sub-ratings; 0 means not rated.
type FeedbackCategories struct {
	Food     float64 `json:"food,omitempty"`
	Service  float64 `json:"service,omitempty"`
	Ambience float64 `json:"ambience,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

type Feedback struct {
	ID         string             `json:"id"`
	OrderID    string             `json:"orderId,omitempty"`
	Rating     int                `json:"rating"`
	Comment    string             `json:"comment,omitempty"`
	Categories FeedbackCategories `json:"categories"`
	CreatedAt  *time.Time         `json:"createdAt,omitempty"`
}
