package main

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

var timeNow = time.Now

func categoryLabel(reg *ledger.Registry, id uuid.UUID) (string, string) {
	if id == ledger.Uncategorized {
		return "Uncategorized", ""
	}
	if c, ok := reg.Lookup(id); ok {
		return c.Name, c.Kind.String()
	}
	return id.String(), "unknown"
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.FromString(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
