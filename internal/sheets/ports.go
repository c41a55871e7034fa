// Package sheets defines the outbound port for spreadsheet export.
package sheets

import (
	"context"
	"time"

	"finman/internal/core"
)

// TransactionRow is a fully resolved transaction, ready to become one
// spreadsheet row. Person and category come as display names because
// the sheet has no use for internal ids.
type TransactionRow struct {
	ID                  int64
	CreatedAt           time.Time
	Description         string
	Amount              core.Money
	Type                core.TransactionType
	PersonName          string
	CategoryDescription string
}

// RowAppender appends one transaction row and returns a reference to
// where it landed (sheet range, synthetic id, ...).
type RowAppender interface {
	Append(ctx context.Context, row TransactionRow) (rowRef string, err error)
}
