package transaction

import (
	"strings"

	"github.com/aarondl/opt/omit"
	"github.com/aarondl/opt/omitnull"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/service"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID             string  `json:"id" doc:"Transaction UUID"`
	CategoryID     *string `json:"categoryID,omitempty" doc:"Category UUID, absent when uncategorized"`
	Amount         string  `json:"amount" doc:"Signed decimal amount, negative for spending"`
	Description    string  `json:"description" doc:"Free-form description"`
	OccurredOn     string  `json:"occurredOn" doc:"Calendar date the transaction counts on"`
	TemplateID     *string `json:"templateID,omitempty" doc:"Template UUID for recurring instances"`
	OccurrenceDate *string `json:"occurrenceDate,omitempty" doc:"Scheduled date of the recurring instance"`
}

// FromLedger renders a ledger transaction with amounts in currencyCode.
func FromLedger(tx ledger.Transaction, currencyCode string) Transaction {
	return Transaction{
		ID:             tx.ID.String(),
		CategoryID:     apierror.FormatID(tx.CategoryID),
		Amount:         currency.Decimal(tx.Amount, currencyCode),
		Description:    tx.Description,
		OccurredOn:     ledger.DateKey(tx.OccurredOn),
		TemplateID:     apierror.FormatID(tx.TemplateID),
		OccurrenceDate: apierror.FormatDate(tx.OccurrenceDate),
	}
}

func fromLedgerList(txs []ledger.Transaction, currencyCode string) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = FromLedger(tx, currencyCode)
	}
	return out
}

// PatchBody lists the fields an edit changes. Omitted fields are kept;
// clearCategory removes the category.
type PatchBody struct {
	CategoryID    *string `json:"categoryID,omitempty" doc:"New category UUID"`
	ClearCategory bool    `json:"clearCategory,omitempty" doc:"Move the transaction to uncategorized"`
	Amount        *string `json:"amount,omitempty" doc:"New signed decimal amount"`
	Description   *string `json:"description,omitempty" maxLength:"500" doc:"New description"`
	OccurredOn    *string `json:"occurredOn,omitempty" format:"date" doc:"New date"`
}

// parsePatch converts a patch body. Failures are ledger validation errors so bulk
// edits can report them per item.
func parsePatch(body PatchBody, currencyCode string) (service.TransactionPatch, error) {
	var patch service.TransactionPatch

	switch {
	case body.ClearCategory && body.CategoryID != nil:
		return patch, ledger.NewValidationError("categoryID and clearCategory are mutually exclusive")
	case body.ClearCategory:
		patch.CategoryID.Null()
	case body.CategoryID != nil:
		id, err := apierror.OptionalID("categoryID", body.CategoryID)
		if err != nil || !id.Valid {
			return patch, ledger.NewValidationError("invalid categoryID %q", *body.CategoryID)
		}
		patch.CategoryID = omitnull.From(id.UUID)
	}

	if body.Amount != nil {
		amount, err := currency.ParseMinor(*body.Amount, currencyCode)
		if err != nil {
			return patch, err
		}
		patch.Amount = omit.From(amount)
	}
	if body.Description != nil {
		patch.Description = omit.From(strings.TrimSpace(*body.Description))
	}
	if body.OccurredOn != nil {
		on, err := ledger.ParseDate(*body.OccurredOn)
		if err != nil {
			return patch, ledger.NewValidationError("invalid occurredOn %q", *body.OccurredOn)
		}
		patch.OccurredOn = omit.From(on)
	}
	return patch, nil
}
