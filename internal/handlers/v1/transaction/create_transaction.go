package transaction

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// CreateTransactionBody is the request body for creating a transaction.
type CreateTransactionBody struct {
	CategoryID  *string `json:"categoryID,omitempty" doc:"Category UUID, omit for uncategorized"`
	Amount      string  `json:"amount" required:"true" doc:"Signed decimal amount, negative for spending"`
	Description string  `json:"description,omitempty" maxLength:"500" doc:"Free-form description"`
	OccurredOn  string  `json:"occurredOn" required:"true" format:"date" doc:"Calendar date of the transaction"`
}

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Body   CreateTransactionBody
}

// CreateTransactionOutput is the Huma output for creating a transaction.
type CreateTransactionOutput struct {
	Body Transaction
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, user uuid.UUID, in service.NewTransaction) (*ledger.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
	Currency           string
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator, currencyCode string) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc, Currency: currencyCode}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transaction",
		Method:        http.MethodPost,
		Path:          "/v1/transaction",
		Summary:       "Create transaction",
		Description:   "Records a manually entered transaction.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

// parseCreateTransactionInput parses and validates the API input.
func parseCreateTransactionInput(input *CreateTransactionInput, currencyCode string) (uuid.UUID, service.NewTransaction, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return uuid.Nil, service.NewTransaction{}, err
	}
	categoryID, err := apierror.OptionalID("categoryID", input.Body.CategoryID)
	if err != nil {
		return uuid.Nil, service.NewTransaction{}, err
	}
	amount, err := currency.ParseMinor(input.Body.Amount, currencyCode)
	if err != nil {
		return uuid.Nil, service.NewTransaction{}, apierror.Invalid("amount", err)
	}
	occurredOn, err := apierror.Date("occurredOn", input.Body.OccurredOn)
	if err != nil {
		return uuid.Nil, service.NewTransaction{}, err
	}
	return user, service.NewTransaction{
		CategoryID:  categoryID,
		Amount:      amount,
		Description: strings.TrimSpace(input.Body.Description),
		OccurredOn:  occurredOn,
	}, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	user, in, err := parseCreateTransactionInput(input, h.Currency)
	if err != nil {
		return nil, err
	}
	logging.GetLogData(ctx).AddData("userID", user)

	tx, err := h.TransactionService.CreateTransaction(ctx, user, in)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to create transaction")
	}
	return &CreateTransactionOutput{Body: FromLedger(*tx, h.Currency)}, nil
}
