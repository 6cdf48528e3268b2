package dto

import (
	"account-ledger/internal/domain/customer"
	"account-ledger/internal/domain/statement"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OpenAccountRequest struct {
	CPF  string `json:"cpf"`
	Name string `json:"name"`
}

func (r *OpenAccountRequest) Validate() error {
	if strings.TrimSpace(r.CPF) == "" {
		return fmt.Errorf("cpf cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

type UpdateAccountRequest struct {
	Name string `json:"name"`
}

func (r *UpdateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

type DepositRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
}

func (r *DepositRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be a positive number")
	}
	return nil
}

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
}

func (r *WithdrawRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be a positive number")
	}
	return nil
}

type OperationResponse struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"150"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewOperationResponses(ops []statement.Operation) []OperationResponse {
	resp := make([]OperationResponse, len(ops))
	for i, op := range ops {
		resp[i] = OperationResponse{
			Type:        string(op.Type),
			Amount:      op.Amount,
			Description: op.Description,
			CreatedAt:   op.CreatedAt,
		}
	}
	return resp
}

type AccountResponse struct {
	ID        string              `json:"id"`
	CPF       string              `json:"cpf"`
	Name      string              `json:"name"`
	Statement []OperationResponse `json:"statement"`
}

func NewAccountResponse(cust *customer.Customer) AccountResponse {
	if cust == nil {

		return AccountResponse{}
	}

	var ops []statement.Operation
	if cust.Statement != nil {
		ops = cust.Statement.All()
	}
	return AccountResponse{
		ID:        cust.ID,
		CPF:       cust.TaxID,
		Name:      cust.Name,
		Statement: NewOperationResponses(ops),
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BalanceResponse struct {
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance" swaggertype:"string" example:"100"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
