package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	MRPCents    int64     `json:"mrpCents"`
	Currency    string    `json:"currency"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}
