package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// declinedTestCard selalu ditolak, untuk mencoba alur gagal bayar
const declinedTestCard = "4000000000000002"

type ChargeRequest struct {
	UserID  uuid.UUID
	Amount  decimal.Decimal
	Details request.PaymentDetails
}

type PaymentGateway interface {
	// Charge return transaction id. Pembayaran ditolak dibungkus ErrPaymentDeclined.
	Charge(ctx context.Context, req ChargeRequest) (string, error)
	// Refund kembalikan dana transaksi yang sudah di-charge ke metode asalnya
	Refund(ctx context.Context, req ChargeRequest, txnID string) error
}

// simulatedGateway tidak ada gateway sungguhan, hanya delay dan tingkat gagal yang bisa diatur
type simulatedGateway struct {
	delay       time.Duration
	failureRate float64
	now         func() time.Time
}

func NewSimulatedGateway(cfg utils.PaymentConfig) PaymentGateway {
	return &simulatedGateway{
		delay:       cfg.Delay(),
		failureRate: cfg.FailureRate,
		now:         time.Now,
	}
}

func (g *simulatedGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", req.Amount.StringFixed(2), ErrPaymentDeclined)
	}
	if utils.NormalizeCardNumber(req.Details.CardNumber) == declinedTestCard {
		return "", fmt.Errorf("card ending %s: %w", declinedTestCard[12:], ErrPaymentDeclined)
	}
	if g.failureRate > 0 && rand.Float64() < g.failureRate {
		return "", fmt.Errorf("issuer unavailable: %w", ErrPaymentDeclined)
	}

	return utils.GenerateTransactionID(g.now()), nil
}

// Refund simulasi selalu berhasil, dana kartu/UPI dianggap kembali di luar sistem
func (g *simulatedGateway) Refund(context.Context, ChargeRequest, string) error {
	return nil
}

// walletGateway pembayaran WALLET dipotong dari saldo, metode lain diteruskan ke next
type walletGateway struct {
	next    PaymentGateway
	wallets repository.WalletRepository
	now     func() time.Time
}

func NewWalletGateway(next PaymentGateway, wallets repository.WalletRepository) PaymentGateway {
	return &walletGateway{next: next, wallets: wallets, now: time.Now}
}

func (g *walletGateway) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	if req.Details.Method != entity.PaymentMethodWallet {
		return g.next.Charge(ctx, req)
	}
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("amount %s: %w", req.Amount.StringFixed(2), ErrPaymentDeclined)
	}

	now := g.now()
	if _, err := g.wallets.Debit(ctx, req.UserID, req.Amount, now); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return "", fmt.Errorf("%v: %w", err, ErrPaymentDeclined)
		}
		return "", fmt.Errorf("debit wallet: %w", err)
	}
	return utils.GenerateTransactionID(now), nil
}

func (g *walletGateway) Refund(ctx context.Context, req ChargeRequest, txnID string) error {
	if req.Details.Method != entity.PaymentMethodWallet {
		return g.next.Refund(ctx, req, txnID)
	}
	if !req.Amount.IsPositive() {
		return nil
	}
	if _, err := g.wallets.Credit(ctx, req.UserID, req.Amount, g.now()); err != nil {
		return fmt.Errorf("refund %s to wallet: %w", txnID, err)
	}
	return nil
}
