package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterUserParams is the validated input for user registration.
type RegisterUserParams struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	ReferralCode string
	ReferrerCode string
}

// UserPatch carries optional admin updates; nil fields are left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	Points    *decimal.Decimal
}

type RegisterOrganizerParams struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
}

type OrganizerPatch struct {
	Name    *string
	Phone   *string
	Address *string
}

type EventInput struct {
	Name        string
	Description string
	ShowTime    time.Time
	Location    string
	IsPaidEvent bool
	BannerURL   string
}

type EventPatch struct {
	Name        *string
	Description *string
	ShowTime    *time.Time
	Location    *string
	IsPaidEvent *bool
	BannerURL   *string
}

type TicketInput struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	RemainingAmount int
}

type TicketPatch struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	RemainingAmount *int
}

type DatePromoInput struct {
	Name            string
	DiscountPercent decimal.Decimal
	StartsAt        time.Time
	EndsAt          time.Time
}

type ReferralPromoInput struct {
	Name            string
	DiscountPercent decimal.Decimal
}

// TransactionPatch carries optional admin updates to a transaction.
type TransactionPatch struct {
	Status *string
}
