package handlers

import (
	"context"

	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/sirupsen/logrus"
)

type TransactionHandler struct {
	store       *store.Store
	authHandler *auth.AuthHandler
}

func NewTransactionHandler(s *store.Store, authHandler *auth.AuthHandler) *TransactionHandler {
	return &TransactionHandler{store: s, authHandler: authHandler}
}

type ListTransactionsInput struct {
	auth.AuthInput
	EventID uint `query:"event" doc:"Only transactions of this event"`
}

type ListTransactionsOutput struct {
	Body []TransactionResponse
}

func (h *TransactionHandler) HandleList(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	transactions, err := h.store.ListTransactions(ctx, actor, input.EventID)
	if err != nil {
		return nil, storeError(err, "list transactions")
	}
	res := &ListTransactionsOutput{Body: make([]TransactionResponse, 0, len(transactions))}
	for _, t := range transactions {
		res.Body = append(res.Body, transactionResponse(t))
	}
	return res, nil
}

type CreateTransactionInput struct {
	auth.AuthInput
	Body struct {
		BookingID uint   `json:"booking_id"`
		Type      string `json:"type,omitempty" enum:"incoming,credit,refund,other" doc:"Defaults to incoming"`
		Method    string `json:"method" enum:"paypal,cash,wire,internal"`
		Number    string `json:"number,omitempty" maxLength:"255" doc:"Reference of the payment provider"`
		Amount    string `json:"amount" doc:"Decimal amount, negative for outgoing payments" example:"25.00"`
		Fee       string `json:"fee,omitempty" example:"0.85"`
		Reason    string `json:"reason,omitempty" maxLength:"255"`
		Date      string `json:"date,omitempty" format:"date" doc:"Defaults to today"`
	}
}

type TransactionOutput struct {
	Body TransactionResponse
}

func (h *TransactionHandler) HandleCreate(ctx context.Context, input *CreateTransactionInput) (*TransactionOutput, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	amount, err := parseDecimal("amount", input.Body.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := parseNullDecimal("fee", input.Body.Fee)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("date", input.Body.Date)
	if err != nil {
		return nil, err
	}

	t := models.Transaction{
		BookingID: input.Body.BookingID,
		Type:      models.TransactionType(input.Body.Type),
		Method:    models.PaymentMethod(input.Body.Method),
		Number:    input.Body.Number,
		Amount:    amount,
		Fee:       fee.Decimal,
		Reason:    input.Body.Reason,
	}
	if date != nil {
		t.Date = *date
	}
	if err := h.store.CreateTransaction(ctx, actor, &t); err != nil {
		return nil, storeError(err, "create transaction")
	}
	logrus.WithFields(logrus.Fields{"booking_id": t.BookingID, "amount": money(t.Amount)}).Info("Transaction recorded")
	return &TransactionOutput{Body: transactionResponse(t)}, nil
}

func (h *TransactionHandler) HandleDelete(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	actor, err := authorize(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeleteTransaction(ctx, actor, input.ID); err != nil {
		return nil, storeError(err, "delete transaction")
	}
	return nil, nil
}
