package models

import (
	"strings"
	"time"
)

// OrderStatus is the kitchen lifecycle state of an order.
type OrderStatus int

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusPending
	OrderStatusPreparing
	OrderStatusReady
	OrderStatusDelivered
	OrderStatusCompleted
	OrderStatusCancelled
)

var orderStatusNames = map[OrderStatus]string{
	OrderStatusUnknown:   "unknown",
	OrderStatusPending:   "pending",
	OrderStatusPreparing: "preparing",
	OrderStatusReady:     "ready",
	OrderStatusDelivered: "delivered",
	OrderStatusCompleted: "completed",
	OrderStatusCancelled: "cancelled",
}

// ParseOrderStatus maps a stored status string to its enum value.
// Matching ignores case and surrounding whitespace; anything else is OrderStatusUnknown.
func ParseOrderStatus(s string) OrderStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return OrderStatusPending
	case "preparing":
		return OrderStatusPreparing
	case "ready":
		return OrderStatusReady
	case "delivered":
		return OrderStatusDelivered
	case "completed":
		return OrderStatusCompleted
	case "cancelled", "canceled":
		return OrderStatusCancelled
	default:
		return OrderStatusUnknown
	}
}

func (s OrderStatus) String() string {
	if n, ok := orderStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(b []byte) error {
	*s = ParseOrderStatus(string(b))
	return nil
}

// Order types. Any other string is kept as-is.
const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type Discount struct {
	Amount float64 `json:"amount"`
	Name   string  `json:"name,omitempty"`
}

type TableRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Modification is one entry of an order's append-only change log.
type Modification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ItemID    string    `json:"itemId,omitempty"`
	Reason    string    `json:"reason"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName,omitempty"`
	ActorRole string    `json:"actorRole,omitempty"`
	At        time.Time `json:"at"`
}

// Modification types recorded by staff.
const (
	ModificationAddItem        = "add_item"
	ModificationRemoveItem     = "remove_item"
	ModificationChangeQuantity = "change_quantity"
	ModificationNote           = "note"
)

// Order is a kitchen order created from a table invoice.
type Order struct {
	ID            string         `json:"id"`
	InvoiceID     string         `json:"invoiceId,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"` // completion instant once completed
	Items         []LineItem     `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	Discount      Discount       `json:"discount"`
	Tax           float64        `json:"tax"`
	ServiceCharge float64        `json:"serviceCharge"`
	Total         float64        `json:"total"`
	OrderType     string         `json:"orderType,omitempty"`
	Table         TableRef       `json:"table"`
	ServerID      string         `json:"serverId,omitempty"`
	Status        OrderStatus    `json:"status"`
	SentToKitchen bool           `json:"sentToKitchen"`
	Modifications []Modification `json:"modifications,omitempty"`
	PreparingAt   *time.Time     `json:"preparingAt,omitempty"`
	ReadyAt       *time.Time     `json:"readyAt,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
}

// SaleRecord is one sold line item flattened out of an order.
type SaleRecord struct {
	ItemID   string  `json:"itemId"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// FlattenSales turns the line items of orders into sale records.
func FlattenSales(orders []Order) []SaleRecord {
	var out []SaleRecord
	for _, o := range orders {
		for _, it := range o.Items {
			out = append(out, SaleRecord{ItemID: it.ID, Price: it.Price, Quantity: it.Quantity})
		}
	}
	return out
}
