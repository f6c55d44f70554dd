package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionStatusPaid   = "PAID"
	TransactionStatusUnpaid = "UNPAID"
)

type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	PaymentTypeID int64           `json:"paymentTypeId"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Archived      bool            `json:"archived"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TransactionItem is one ticket line inside a transaction, carrying its own
// discount resolution and total.
type TransactionItem struct {
	ID              int64           `json:"id"`
	TransactionID   int64           `json:"transactionId"`
	TicketID        int64           `json:"ticketId"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	PromoDateID     *int64          `json:"promoDateId,omitempty"`
	PromoReferralID *int64          `json:"promoReferralId,omitempty"`
	ReferringUserID *int64          `json:"referringUserId,omitempty"`
	DiscountTotal   decimal.Decimal `json:"discountTotal"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionDetail is a transaction together with its line items.
type TransactionDetail struct {
	Transaction Transaction       `json:"transaction"`
	Items       []TransactionItem `json:"items"`
}

// PurchaseParams is the validated input for one ticket purchase.
type PurchaseParams struct {
	UserID            int64
	TicketID          int64
	Quantity          int
	PaymentTypeID     int64
	DatePromoID       *int64
	ReferralCode      string
	ReferralPromoID   *int64
	UsePoints         bool
	UseRegisterCoupon bool
}
