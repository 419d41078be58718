package domain

import "time"

// User mirrors the identity subsystem's row. Profile fields may be empty for
// rows created transiently at checkout and reconciled later.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GuestUser tracks a guest checkout contact awaiting account conversion.
type GuestUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ConvertToken   string    `json:"-"`
	TokenExpiry    time.Time `json:"-"`
	AccountCreated bool      `json:"accountCreated"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"ownerUserId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
