package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/logging"
)

type BulkDeleteBody struct {
	IDs []string `json:"ids" required:"true" maxItems:"1000" doc:"Transaction UUIDs to delete"`
}

type BulkDeleteInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Body   BulkDeleteBody
}

type BulkDeleteResponseBody struct {
	Deleted int `json:"deleted" doc:"Number of transactions removed; foreign, unknown and already deleted ids are skipped"`
}

type BulkDeleteOutput struct {
	Body BulkDeleteResponseBody
}

type bulkDeleter interface {
	BulkDelete(ctx context.Context, user uuid.UUID, ids []uuid.UUID) (int, error)
}

// BulkDeleteHandler handles POST /v1/transaction/bulk-delete.
type BulkDeleteHandler struct {
	TransactionService bulkDeleter
}

func NewBulkDeleteHandler(svc bulkDeleter) *BulkDeleteHandler {
	return &BulkDeleteHandler{TransactionService: svc}
}

func (h *BulkDeleteHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bulk-delete-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/bulk-delete",
		Summary:     "Bulk delete transactions",
		Description: "Deletes the caller's transactions among the given ids. Deleted recurring instances are not recreated.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseBulkDeleteInput(input *BulkDeleteInput) (uuid.UUID, []uuid.UUID, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	ids := make([]uuid.UUID, len(input.Body.IDs))
	for i, raw := range input.Body.IDs {
		if ids[i], err = apierror.ID("ids", raw); err != nil {
			return uuid.Nil, nil, err
		}
	}
	return user, ids, nil
}

func (h *BulkDeleteHandler) handle(ctx context.Context, input *BulkDeleteInput) (*BulkDeleteOutput, error) {
	user, ids, err := parseBulkDeleteInput(input)
	if err != nil {
		return nil, err
	}
	logData := logging.GetLogData(ctx)
	logData.AddData("userID", user)
	logData.AddData("requested", len(ids))

	n, err := h.TransactionService.BulkDelete(ctx, user, ids)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to delete transactions")
	}
	return &BulkDeleteOutput{Body: BulkDeleteResponseBody{Deleted: n}}, nil
}
