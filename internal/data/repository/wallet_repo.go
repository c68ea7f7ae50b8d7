package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletRepository interface {
	// Get wallet user, saldo nol kalau belum pernah diisi
	Get(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error)
	// Debit atomik, ErrInsufficientBalance kalau saldo kurang
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error)
}

type walletRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWalletRepository(db database.PgxIface, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

func (r *walletRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	wallet := entity.Wallet{UserID: userID}
	err := r.db.QueryRow(ctx, `SELECT balance, updated_at FROM wallets WHERE user_id = $1`, userID).
		Scan(&wallet.Balance, &wallet.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &entity.Wallet{UserID: userID, Balance: decimal.Zero}, nil
	}
	if err != nil {
		r.log.Error("Failed to get wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
		RETURNING balance, updated_at
	`

	wallet := entity.Wallet{UserID: userID}
	if err := r.db.QueryRow(ctx, query, userID, amount, at).Scan(&wallet.Balance, &wallet.UpdatedAt); err != nil {
		r.log.Error("Failed to credit wallet",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("amount", amount.StringFixed(2)),
		)
		return nil, fmt.Errorf("credit wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

func (r *walletRepository) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) (*entity.Wallet, error) {
	// kondisi saldo di WHERE, dua debit bersamaan tidak bisa membuat saldo minus
	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = $3
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance, updated_at
	`

	wallet := entity.Wallet{UserID: userID}
	err := r.db.QueryRow(ctx, query, userID, amount, at).Scan(&wallet.Balance, &wallet.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("debit %s: %w", amount.StringFixed(2), ErrInsufficientBalance)
	}
	if err != nil {
		r.log.Error("Failed to debit wallet",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("amount", amount.StringFixed(2)),
		)
		return nil, fmt.Errorf("debit wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}
