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

// BulkEditItem is one edit of a bulk request.
type BulkEditItem struct {
	ID string `json:"id" required:"true" doc:"Transaction UUID"`
	PatchBody
}

type BulkEditBody struct {
	Edits []BulkEditItem `json:"edits" required:"true" maxItems:"1000" doc:"Edits applied independently; edits of the same transaction apply in order"`
}

type BulkEditInput struct {
	UserID string `header:"X-User-ID" required:"true" doc:"Owning user UUID"`
	Body   BulkEditBody
}

// BulkEditFailure explains why one item was not applied.
type BulkEditFailure struct {
	Index   int    `json:"index" doc:"Position of the item in the request"`
	ID      string `json:"id" doc:"Transaction UUID as sent"`
	Kind    string `json:"kind" doc:"Error kind: validation, invalid_rule, not_found or storage"`
	Message string `json:"message" doc:"Human readable cause"`
}

type BulkEditResponseBody struct {
	Applied  int               `json:"applied" doc:"Number of edits applied"`
	Failures []BulkEditFailure `json:"failures" doc:"Edits that were not applied"`
	Updated  []Transaction     `json:"updated" doc:"Transactions after each applied edit"`
}

type BulkEditOutput struct {
	Body BulkEditResponseBody
}

type bulkEditor interface {
	ApplyBulkEdit(ctx context.Context, user uuid.UUID, edits []service.Edit) (*service.BulkEditResult, error)
}

// BulkEditHandler handles POST /v1/transaction/bulk-edit.
type BulkEditHandler struct {
	TransactionService bulkEditor
	Currency           string
}

func NewBulkEditHandler(svc bulkEditor, currencyCode string) *BulkEditHandler {
	return &BulkEditHandler{TransactionService: svc, Currency: currencyCode}
}

func (h *BulkEditHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bulk-edit-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/bulk-edit",
		Summary:     "Bulk edit transactions",
		Description: "Applies many edits and reports every failed item with its cause. A failed item never blocks the others.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

// parseBulkEditInput splits the items into parsed edits and items that failed to
// parse. indexes maps each parsed edit back to its request position.
func parseBulkEditInput(items []BulkEditItem, currencyCode string) (edits []service.Edit, indexes []int, failures []BulkEditFailure) {
	for i, item := range items {
		id, err := uuid.FromString(item.ID)
		if err != nil {
			failures = append(failures, parseFailure(i, item.ID, ledger.NewValidationError("invalid id %q", item.ID)))
			continue
		}
		patch, err := parsePatch(item.PatchBody, currencyCode)
		if err != nil {
			failures = append(failures, parseFailure(i, item.ID, err))
			continue
		}
		edits = append(edits, service.Edit{ID: id, Patch: patch})
		indexes = append(indexes, i)
	}
	return edits, indexes, failures
}

func parseFailure(index int, id string, err error) BulkEditFailure {
	return BulkEditFailure{Index: index, ID: id, Kind: string(ledger.KindOf(err)), Message: ledger.MessageOf(err)}
}

func (h *BulkEditHandler) handle(ctx context.Context, input *BulkEditInput) (*BulkEditOutput, error) {
	user, err := apierror.UserID(input.UserID)
	if err != nil {
		return nil, err
	}
	edits, indexes, failures := parseBulkEditInput(input.Body.Edits, h.Currency)

	logData := logging.GetLogData(ctx)
	logData.AddData("userID", user)
	logData.AddData("editCount", len(input.Body.Edits))

	resp := BulkEditResponseBody{
		Failures: failures,
		Updated:  []Transaction{},
	}
	if len(edits) > 0 {
		stopTimer := logData.AddTiming("bulkEditMs")
		result, err := h.TransactionService.ApplyBulkEdit(ctx, user, edits)
		stopTimer()
		if err != nil {
			return nil, apierror.FromLedger(err, "failed to apply bulk edit")
		}

		resp.Applied = result.Applied
		resp.Updated = fromLedgerList(result.Updated, h.Currency)
		for _, f := range result.Failures {
			resp.Failures = append(resp.Failures, BulkEditFailure{
				Index:   indexes[f.Index],
				ID:      f.ID.String(),
				Kind:    string(f.Kind),
				Message: f.Message,
			})
		}
	}
	if resp.Failures == nil {
		resp.Failures = []BulkEditFailure{}
	}
	logData.AddData("failureCount", len(resp.Failures))
	return &BulkEditOutput{Body: resp}, nil
}
