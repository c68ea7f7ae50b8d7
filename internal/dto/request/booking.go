package request

import (
	"strings"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

type ReserveSeatsRequest struct {
	SeatIDs     []string `json:"seat_ids" validate:"required,min=1,max=10,dive,uuid"`
	HoldMinutes int      `json:"hold_minutes,omitempty" validate:"omitempty,min=1,max=30"`
}

type ReleaseSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,dive,uuid"`
}

// PaymentDetails isi form pembayaran. Field yang dipakai tergantung Method.
type PaymentDetails struct {
	Method         entity.PaymentMethod `json:"method"`
	CardNumber     string               `json:"card_number,omitempty"`
	Expiry         string               `json:"expiry,omitempty"`
	CVV            string               `json:"cvv,omitempty"`
	CardholderName string               `json:"cardholder_name,omitempty"`
	UPIID          string               `json:"upi_id,omitempty"`
	Bank           string               `json:"bank,omitempty"`
}

// Validate pesan error per field, nil kalau valid. Dipakai server dan SDK.
func (p PaymentDetails) Validate() map[string]string {
	errs := make(map[string]string)
	check := func(field string, value interface{}, tag string) {
		if msg := utils.ValidateVar(value, tag); msg != "" {
			errs[field] = msg
		}
	}

	switch p.Method {
	case entity.PaymentMethodCreditCard, entity.PaymentMethodDebitCard:
		check("card_number", p.CardNumber, "required,card_number")
		check("expiry", p.Expiry, "required,card_expiry")
		check("cvv", p.CVV, "required,cvv")
		check("cardholder_name", strings.TrimSpace(p.CardholderName), "required")
	case entity.PaymentMethodUPI:
		check("upi_id", strings.TrimSpace(p.UPIID), "required,upi_id")
	case entity.PaymentMethodNetBanking:
		check("bank", strings.TrimSpace(p.Bank), "required")
	case entity.PaymentMethodWallet:
		// dibayar dari saldo, tidak ada field tambahan
	case "":
		errs["method"] = "This field is required"
	default:
		errs["method"] = "Must be one of: CREDIT_CARD, DEBIT_CARD, UPI, NET_BANKING, WALLET"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CheckoutRequest IdempotencyKey dibuat client sekali per checkout, dikirim ulang saat retry
type CheckoutRequest struct {
	IdempotencyKey string         `json:"idempotency_key" validate:"required,min=8,max=64"`
	ShowID         string         `json:"show_id" validate:"required,uuid"`
	SeatIDs        []string       `json:"seat_ids" validate:"required,min=1,max=10,dive,uuid"`
	Payment        PaymentDetails `json:"payment"`
}

// Validate gabungan validasi struct dan form pembayaran
func (r *CheckoutRequest) Validate() map[string]string {
	errs := utils.ValidateStruct(r)
	for field, msg := range r.Payment.Validate() {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["payment."+field] = msg
	}
	return errs
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// MaxWalletTopUp batas satu kali top-up
var MaxWalletTopUp = decimal.NewFromInt(10000)

// TopUpWalletRequest saldo diisi lewat metode pembayaran biasa, bukan dari wallet sendiri
type TopUpWalletRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Payment PaymentDetails  `json:"payment"`
}

func (r *TopUpWalletRequest) Validate() map[string]string {
	errs := make(map[string]string)
	switch {
	case !r.Amount.IsPositive():
		errs["amount"] = "Must be greater than 0"
	case r.Amount.GreaterThan(MaxWalletTopUp):
		errs["amount"] = "Must be at most " + MaxWalletTopUp.String()
	case !r.Amount.Equal(r.Amount.Round(2)):
		errs["amount"] = "At most 2 decimal places"
	}

	if r.Payment.Method == entity.PaymentMethodWallet {
		errs["payment.method"] = "Wallet cannot be topped up from itself"
	} else {
		for field, msg := range r.Payment.Validate() {
			errs["payment."+field] = msg
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
