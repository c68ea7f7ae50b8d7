package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"
	"movie-booking/internal/dto/request"
	"movie-booking/internal/dto/response"
	"movie-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	// GetPayments riwayat pembayaran (wallet)
	GetPayments(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	// TopUpWallet charge lewat gateway dulu, saldo hanya bertambah kalau pembayaran berhasil
	TopUpWallet(ctx context.Context, userID string, req *request.TopUpWalletRequest) (*response.WalletResponse, error)
}

type userService struct {
	repo    *repository.Repository
	gateway PaymentGateway
	now     func() time.Time
	log     *zap.Logger
}

func NewUserService(repo *repository.Repository, gateway PaymentGateway, log *zap.Logger) UserService {
	return &userService{
		repo:    repo,
		gateway: gateway,
		now:     time.Now,
		log:     log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID string) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID string, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	user.Touch(us.now())

	if err := us.repo.User.Update(ctx, user); err != nil {
		us.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("update profile: %w", err)
	}

	us.log.Info("Profile updated", zap.String("user_id", userID))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetPayments(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	req.Normalize()

	payments, err := us.repo.Payment.FindByUserID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get payments", zap.Error(err), zap.String("user_id", userID))
		return nil, &LoadError{Resource: "payments", Err: err}
	}

	total, err := us.repo.Payment.CountByUserID(ctx, id)
	if err != nil {
		return nil, &LoadError{Resource: "payments", Err: err}
	}

	data := make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		data[i] = response.PaymentToResponse(p)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	wallet, err := us.repo.Wallet.Get(ctx, id)
	if err != nil {
		us.log.Error("Failed to get wallet", zap.Error(err), zap.String("user_id", userID))
		return nil, &LoadError{Resource: "wallet", Err: err}
	}

	resp := response.WalletToResponse(wallet)
	return &resp, nil
}

func (us *userService) TopUpWallet(ctx context.Context, userID string, req *request.TopUpWalletRequest) (*response.WalletResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, newValidationError(errs)
	}
	amount := req.Amount.Round(2)

	// 1. Charge metode pembayaran
	txnID, err := us.gateway.Charge(ctx, ChargeRequest{UserID: id, Amount: amount, Details: req.Payment})
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			us.recordTopUp(ctx, id, req.Payment.Method, amount, entity.PaymentStatusFailed, utils.GenerateTransactionID(us.now()), err.Error())
			us.log.Warn("Wallet top-up declined", zap.String("user_id", userID), zap.Error(err))
			return nil, err
		}
		return nil, fmt.Errorf("charge top-up: %w", err)
	}

	// 2. Kredit saldo
	wallet, err := us.repo.Wallet.Credit(ctx, id, amount, us.now())
	if err != nil {
		us.log.Error("Failed to credit wallet after payment",
			zap.Error(err),
			zap.String("transaction_id", txnID),
			zap.String("user_id", userID),
		)
		if refundErr := us.gateway.Refund(ctx, ChargeRequest{UserID: id, Amount: amount, Details: req.Payment}, txnID); refundErr != nil {
			us.log.Error("Failed to refund top-up", zap.Error(refundErr), zap.String("transaction_id", txnID))
		}
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	us.recordTopUp(ctx, id, req.Payment.Method, amount, entity.PaymentStatusCompleted, txnID, "")

	us.log.Info("Wallet topped up",
		zap.String("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("transaction_id", txnID),
	)

	resp := response.WalletToResponse(wallet)
	resp.TransactionID = txnID
	return &resp, nil
}

// recordTopUp payment top-up tidak punya booking
func (us *userService) recordTopUp(ctx context.Context, userID uuid.UUID, method entity.PaymentMethod, amount decimal.Decimal, status entity.PaymentStatus, txnID, failure string) {
	payment := &entity.Payment{
		BaseNoDelete:  entity.NewBaseNoDelete(us.now()),
		UserID:        userID,
		Method:        method,
		Amount:        amount,
		Status:        status,
		TransactionID: txnID,
	}
	if failure != "" {
		payment.FailureReason = &failure
	}
	if err := us.repo.Payment.Create(ctx, payment); err != nil {
		us.log.Error("Failed to record top-up payment", zap.Error(err), zap.String("transaction_id", txnID))
	}
}

func (us *userService) findUser(ctx context.Context, userID string) (*entity.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		us.log.Warn("Invalid user ID", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrUnauthorized
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
