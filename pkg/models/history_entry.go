package models

import (
	"time"

	"github.com/uptrace/bun"
)

// HistoryEntry records one status transition of a book copy. Rows are only
// ever inserted.
type HistoryEntry struct {
	bun.BaseModel `bun:"table:history_entries,alias:he"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BookCopyID *string   `json:"book_copy_id"`
	BookCopy   *BookCopy `bun:"rel:belongs-to,join:book_copy_id=id" json:"book_copy,omitempty"`
	LoanerID   *int      `json:"loaner_id"`
	Comment    string    `json:"comment"`
}
