package template

import (
	"time"

	"github.com/carson-networks/budget-ledger/internal/currency"
	"github.com/carson-networks/budget-ledger/internal/handlers/apierror"
	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/recurrence"
)

// Template is the API response model for a recurring template.
type Template struct {
	ID             string  `json:"id" doc:"Template UUID"`
	CategoryID     *string `json:"categoryID,omitempty" doc:"Category UUID of every instance"`
	Amount         string  `json:"amount" doc:"Signed decimal amount of every instance"`
	Description    string  `json:"description"`
	Frequency      string  `json:"frequency" doc:"daily, weekly, monthly or yearly"`
	Interval       int     `json:"interval" doc:"Step in frequency units"`
	Anchor         string  `json:"anchor" doc:"First scheduled date"`
	EndDate        *string `json:"endDate,omitempty" doc:"Last possible date"`
	MaxOccurrences int     `json:"maxOccurrences,omitempty" doc:"Occurrence cap counted from the anchor"`
	Active         bool    `json:"active"`
	NextOccurrence *string `json:"nextOccurrence,omitempty" doc:"Next scheduled date from today, omitted once the schedule has ended"`
}

// fromLedger builds the response model; today anchors NextOccurrence.
func fromLedger(t ledger.Template, code string, today time.Time) Template {
	var next *time.Time
	if d, ok, err := recurrence.Next(t, today); err == nil && ok {
		next = &d
	}
	return Template{
		ID:             t.ID.String(),
		CategoryID:     apierror.FormatID(t.CategoryID),
		Amount:         currency.Decimal(t.Amount, code),
		Description:    t.Description,
		Frequency:      t.Rule.Frequency.String(),
		Interval:       t.Rule.Interval,
		Anchor:         ledger.DateKey(t.Rule.Anchor),
		EndDate:        apierror.FormatDate(t.Rule.EndDate),
		MaxOccurrences: t.Rule.MaxOccurrences,
		Active:         t.Active,
		NextOccurrence: apierror.FormatDate(next),
	}
}
