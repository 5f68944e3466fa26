package model

// CostType selects how an item's USD value is derived at order time.
type CostType string

const (
	CostTypeFixed  CostType = "fixed"
	CostTypeConfig CostType = "config"
)

// ItemConfig carries the per-item pricing knobs for config-cost items.
// A zero value means the knob is absent.
type ItemConfig struct {
	DollarsPerHour  float64 `json:"dollars_per_hour,omitempty"`
	ProgressPerHour float64 `json:"progress_per_hour,omitempty"`
}

// ShopItem is the subset of a shop item the pricing engine needs.
type ShopItem struct {
	ItemID               string     `json:"itemID"`
	USDCost              float64    `json:"usdCost"`
	CostType             CostType   `json:"costType"`
	Config               ItemConfig `json:"config"`
	Price                int        `json:"price"`
	UseRandomizedPricing bool       `json:"useRandomizedPricing"`
}

// OrderConfig carries the per-order overrides for config-cost items.
type OrderConfig struct {
	Hours   float64 `json:"hours,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

// ShopOrder is the subset of an order the pricing engine needs.
type ShopOrder struct {
	Quantity int         `json:"quantity"`
	Config   OrderConfig `json:"config"`
}
