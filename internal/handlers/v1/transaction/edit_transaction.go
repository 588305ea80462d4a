package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// EditTransactionInput is the Huma input for patching one transaction.
type EditTransactionInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	ID     string `path:"id" doc:"Transaction UUID"`
	Body   PatchBody
}

// EditTransactionOutput returns the transaction after the edit.
type EditTransactionOutput struct {
	Body Transaction
}

type transactionEditor interface {
	ApplyEdit(ctx context.Context, user, id uuid.UUID, patch service.TransactionPatch) (*ledger.Transaction, error)
}

// EditTransactionHandler handles PATCH /v1/transaction/{id}.
type EditTransactionHandler struct {
	TransactionService transactionEditor
	Currency           string
}

func NewEditTransactionHandler(svc transactionEditor, currencyCode string) *EditTransactionHandler {
	return &EditTransactionHandler{TransactionService: svc, Currency: currencyCode}
}

func (h *EditTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "edit-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transaction/{id}",
		Summary:     "Edit transaction",
		Description: "Changes the category, amount, description or date of one transaction. An edit that breaks the category's sign rule is rejected and nothing is changed.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *EditTransactionHandler) handle(ctx context.Context, input *EditTransactionInput) (*EditTransactionOutput, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.ID("id", input.ID)
	if err != nil {
		return nil, err
	}
	patch, err := parsePatch(input.Body, h.Currency)
	if err != nil {
		return nil, apierror.FromLedger(err, "invalid edit")
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("userID", user)
	logData.AddData("transactionID", id)

	tx, err := h.TransactionService.ApplyEdit(ctx, user, id, patch)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to edit transaction")
	}
	return &EditTransactionOutput{Body: FromLedger(*tx, h.Currency)}, nil
}
