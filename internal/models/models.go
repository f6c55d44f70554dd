package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID              int64           `json:"id"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName,omitempty"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	Address         string          `json:"address,omitempty"`
	ReferralCode    string          `json:"referralCode"`
	Points          decimal.Decimal `json:"points"`
	PointsExpiresAt *time.Time      `json:"pointsExpiresAt,omitempty"`
	RegisterCoupon  bool            `json:"registerCoupon"`
	IsAdmin         bool            `json:"isAdmin,omitempty"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type Organizer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Event struct {
	ID            int64     `json:"id"`
	OrganizerID   int64     `json:"organizerId"`
	OrganizerName string    `json:"organizerName,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ShowTime      time.Time `json:"showTime"`
	Location      string    `json:"location,omitempty"`
	IsPaidEvent   bool      `json:"isPaidEvent"`
	BannerURL     string    `json:"bannerUrl,omitempty"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EventDetail is an event plus the purchasable tickets attached to it.
type EventDetail struct {
	Event   Event    `json:"event"`
	Tickets []Ticket `json:"tickets"`
}

type Ticket struct {
	ID              int64           `json:"id"`
	EventID         int64           `json:"eventId"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	RemainingAmount int             `json:"remainingAmount"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DatePromo is an event-scoped percentage discount active inside a time
// window.
type DatePromo struct {
	ID              int64           `json:"id"`
	EventID         int64           `json:"eventId"`
	Name            string          `json:"name,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ReferralPromo is an event-scoped percentage discount unlocked by supplying
// another user's referral code.
type ReferralPromo struct {
	ID              int64           `json:"id"`
	EventID         int64           `json:"eventId"`
	Name            string          `json:"name,omitempty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type PaymentType struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	InstantSettlement bool   `json:"instantSettlement"`
}

// EventFilter narrows the public event listing.
type EventFilter struct {
	Name     string
	Location string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}
