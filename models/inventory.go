package models

import (
	"strings"
	"time"
)

// IngredientType is the perishability class that sizes an item's safety stock.
type IngredientType int

const (
	IngredientTypeUnknown IngredientType = iota
	IngredientHighlyPerishable
	IngredientDryGoods
	IngredientPackagedFrozen
	IngredientBeveragesCondiments
)

func ParseIngredientType(s string) IngredientType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGHLY_PERISHABLE":
		return IngredientHighlyPerishable
	case "DRY_GOODS":
		return IngredientDryGoods
	case "PACKAGED_FROZEN":
		return IngredientPackagedFrozen
	case "BEVERAGES_CONDIMENTS":
		return IngredientBeveragesCondiments
	default:
		return IngredientTypeUnknown
	}
}

func (t IngredientType) String() string {
	switch t {
	case IngredientHighlyPerishable:
		return "HIGHLY_PERISHABLE"
	case IngredientDryGoods:
		return "DRY_GOODS"
	case IngredientPackagedFrozen:
		return "PACKAGED_FROZEN"
	case IngredientBeveragesCondiments:
		return "BEVERAGES_CONDIMENTS"
	default:
		return "UNKNOWN"
	}
}

func (t IngredientType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *IngredientType) UnmarshalText(b []byte) error {
	*t = ParseIngredientType(string(b))
	return nil
}

// InventoryUpdate is one entry of an inventory item's append-only history.
type InventoryUpdate struct {
	ID       string    `json:"id"`
	Action   string    `json:"action"` // restock, adjustment, usage
	Quantity float64   `json:"quantity"`
	ActorID  string    `json:"actorId"`
	At       time.Time `json:"at"`
}

type InventoryItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit,omitempty"`
	CostPerUnit float64           `json:"costPerUnit"`
	MinQuantity float64           `json:"minQuantity,omitempty"` // 0 means unset
	Type        IngredientType    `json:"type"`
	History     []InventoryUpdate `json:"history,omitempty"`
}

// UsageRecord is ingredient consumption attributed to a day.
type UsageRecord struct {
	ItemID   string     `json:"itemId"`
	Quantity float64    `json:"quantity"`
	Cost     float64    `json:"cost"`
	Date     *time.Time `json:"date,omitempty"`
}

type WasteRecord struct {
	ItemID   string     `json:"itemId"`
	ItemName string     `json:"itemName,omitempty"`
	Quantity float64    `json:"quantity"`
	Cost     float64    `json:"cost"`
	Date     *time.Time `json:"date,omitempty"`
	Reason   string     `json:"reason,omitempty"`
}

type DeliveryLine struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
}

type SupplierDelivery struct {
	ID           string         `json:"id"`
	SupplierName string         `json:"supplierName"`
	DeliveredAt  *time.Time     `json:"deliveredAt,omitempty"`
	Lines        []DeliveryLine `json:"lines,omitempty"`
	TotalCost    float64        `json:"totalCost"`
	OnTime       bool           `json:"isOnTime"`
	Complete     bool           `json:"isComplete"`
	Correct      bool           `json:"isCorrect"`
}
