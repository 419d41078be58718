package domain

import "time"

type OrderStatus string

const (
	OrderCreated    OrderStatus = "ORDER_PLACED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCreated, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentStripe PaymentMethod = "STRIPE"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentStripe
}

type Order struct {
	ID            string        `json:"id"`
	StoreID       string        `json:"storeId"`
	UserID        *string       `json:"userId,omitempty"`
	AddressID     *string       `json:"addressId,omitempty"`
	IsGuest       bool          `json:"isGuest"`
	GuestName     string        `json:"guestName,omitempty"`
	GuestEmail    string        `json:"guestEmail,omitempty"`
	GuestPhone    string        `json:"guestPhone,omitempty"`
	TotalCents    int64         `json:"totalCents"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	IsPaid        bool          `json:"isPaid"`
	IsCouponUsed  bool          `json:"isCouponUsed"`
	// Coupon is a frozen value snapshot captured at commit time, never a live
	// reference. Later coupon edits cannot alter it.
	Coupon      *Coupon     `json:"coupon,omitempty"`
	Status      OrderStatus `json:"status"`
	TrackingID  string      `json:"trackingId,omitempty"`
	Courier     string      `json:"courier,omitempty"`
	TrackingURL string      `json:"trackingUrl,omitempty"`
	Items       []OrderItem `json:"orderItems"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity"`
	// PriceCents is the unit price frozen at purchase time.
	PriceCents int64 `json:"priceCents"`
}
