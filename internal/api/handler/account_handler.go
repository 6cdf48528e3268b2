package handler

import (
	"account-ledger/internal/api/handler/dto"
	"account-ledger/internal/api/middleware"
	"account-ledger/internal/domain/account"
	"account-ledger/internal/domain/customer"
	"account-ledger/internal/pkg/apperrors"
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	msgCustomerCreated = "Customer created!"
	msgAccountUpdated  = "Account updated!"
	msgAccountDeleted  = "Account deleted!"
	msgDeposited       = "Successfully deposited!"
	msgWithdrawn       = "Successfully withdrawn!"
	msgSuccess         = "Success!"
)

type AccountHandler struct {
	service account.AccountService
	logger  *slog.Logger
}

func NewAccountHandler(s account.AccountService, l *slog.Logger) *AccountHandler {
	if s == nil {
		panic("account service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &AccountHandler{
		service: s,
		logger:  l.With("component", "AccountHandler"),
	}
}

// customerFrom returns the customer resolved by the identity gate.
func customerFrom(ctx context.Context) (*customer.Customer, error) {
	cust, ok := middleware.CustomerFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: customer missing from request context", apperrors.ErrInternalServer)
	}
	return cust, nil
}

// logLevelFor keeps expected business rejections out of the error log.
func logLevelFor(err error) slog.Level {
	if statusFor(err) >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// OpenAccount handles POST /account
// @Summary Open a new account
// @Description Registers a customer under a unique tax ID with an empty statement.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.OpenAccountRequest true "Account opening request"
// @Success 201 {object} dto.MessageResponse "Customer created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload (e.g., empty cpf/name)"
// @Failure 409 {object} dto.ErrorResponse "Customer already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /account [post]
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received open account request")

	var req dto.OpenAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.OpenAccount(r.Context(), req.CPF, req.Name)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to open account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Account opened", slog.String("customerID", created.ID))
	respondMessage(w, http.StatusCreated, msgCustomerCreated)
}

// GetAccount handles GET /account
// @Summary Retrieve account details
// @Description Returns the customer identified by the cpf header together with the full statement.
// @Tags Accounts
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Success 200 {object} dto.AccountResponse "Account details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Missing cpf header"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /account [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	current, err := h.service.GetAccount(r.Context(), cust)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAccountResponse(current))
}

// UpdateAccount handles PUT /account
// @Summary Rename the account holder
// @Tags Accounts
// @Accept json
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Param request body dto.UpdateAccountRequest true "New name"
// @Success 201 {object} dto.MessageResponse "Account updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload (e.g., empty name)"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /account [put]
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.UpdateAccount(r.Context(), cust, req.Name); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to update account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Account updated", slog.String("customerID", cust.ID))
	respondMessage(w, http.StatusCreated, msgAccountUpdated)
}

// CloseAccount handles DELETE /account
// @Summary Close an account
// @Description Removes the customer. The statement rejects any further operations.
// @Tags Accounts
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Success 200 {object} dto.MessageResponse "Account deleted"
// @Failure 400 {object} dto.ErrorResponse "Missing cpf header"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /account [delete]
func (h *AccountHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.CloseAccount(r.Context(), cust); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to close account", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Account closed", slog.String("customerID", cust.ID))
	respondMessage(w, http.StatusOK, msgAccountDeleted)
}

// GetStatement handles GET /statement
// @Summary Retrieve the full statement
// @Tags Statement
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Success 200 {array} dto.OperationResponse "Operations in insertion order"
// @Failure 400 {object} dto.ErrorResponse "Missing cpf header"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /statement [get]
func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	ops, err := h.service.GetStatement(r.Context(), cust)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get statement", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewOperationResponses(ops))
}

// GetStatementByDate handles GET /statement/date?date=YYYY-MM-DD
// @Summary Retrieve the statement of one calendar day
// @Description Returns the operations created on the given day in the service's time zone.
// @Tags Statement
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Param date query string true "Day in YYYY-MM-DD format"
// @Success 200 {array} dto.OperationResponse "Operations of that day"
// @Failure 400 {object} dto.ErrorResponse "Missing cpf header or invalid date"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /statement/date [get]
func (h *AccountHandler) GetStatementByDate(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	ops, err := h.service.GetStatementByDate(r.Context(), cust, date)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get statement by date",
			slog.String("date", date), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewOperationResponses(ops))
}

// Deposit handles POST /deposit
// @Summary Deposit into the account
// @Tags Operations
// @Accept json
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Param request body dto.DepositRequest true "Deposit request"
// @Success 201 {object} dto.MessageResponse "Successfully deposited"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or non-positive amount"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /deposit [post]
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err))
		return
	}

	if err := h.service.Deposit(r.Context(), cust, req.Amount, req.Description); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to deposit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Deposit recorded",
		slog.String("customerID", cust.ID), slog.String("amount", req.Amount.String()))
	respondMessage(w, http.StatusCreated, msgDeposited)
}

// Withdraw handles POST /withdraw
// @Summary Withdraw from the account
// @Description Debits the account only if the current balance covers the amount.
// @Tags Operations
// @Accept json
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Param request body dto.WithdrawRequest true "Withdrawal request"
// @Success 201 {object} dto.MessageResponse "Successfully withdrawn"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or non-positive amount"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /withdraw [post]
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.WithdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err))
		return
	}

	if err := h.service.Withdraw(r.Context(), cust, req.Amount); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to withdraw", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Withdrawal recorded",
		slog.String("customerID", cust.ID), slog.String("amount", req.Amount.String()))
	respondMessage(w, http.StatusCreated, msgWithdrawn)
}

// GetBalance handles GET /balance
// @Summary Retrieve the current balance
// @Tags Operations
// @Produce json
// @Param cpf header string true "Customer tax ID"
// @Success 200 {object} dto.BalanceResponse "Balance retrieved"
// @Failure 400 {object} dto.ErrorResponse "Missing cpf header"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /balance [get]
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	cust, err := customerFrom(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), cust)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get balance", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.BalanceResponse{Message: msgSuccess, Balance: balance})
}
