package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BookStatusReserved  = "reserved"
	BookStatusInRepair  = "in_repair"
	BookStatusAvailable = "available"
	BookStatusWithdrawn = "withdrawn"
	BookStatusOnLoan    = "on_loan"
)

// DefaultBookStatus is the status of a freshly registered copy.
const DefaultBookStatus = BookStatusAvailable

// BookStatuses lists every status in display order.
var BookStatuses = []string{
	BookStatusReserved,
	BookStatusInRepair,
	BookStatusAvailable,
	BookStatusWithdrawn,
	BookStatusOnLoan,
}

func IsValidBookStatus(status string) bool {
	for _, s := range BookStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// StatusHoldsLoaner reports whether a copy in the given status keeps its
// loaner. Every other status clears it.
func StatusHoldsLoaner(status string) bool {
	return status == BookStatusOnLoan || status == BookStatusReserved
}

type BookCopy struct {
	bun.BaseModel `bun:"table:book_copies,alias:bc"`

	ID             string           `bun:",pk" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Title          string           `bun:",nullzero" json:"title"`
	AuthorID       *int             `json:"author_id"`
	Author         *Author          `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Summary        string           `json:"summary"`
	ISBN           *string          `bun:"isbn" json:"isbn"`
	LoanStartDate  *time.Time       `json:"loan_start_date"`
	ReservedAt     *time.Time       `json:"reserved_at"`
	OwnerID        int              `json:"owner_id"`
	Owner          *User            `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	LoanerID       *int             `json:"loaner_id"`
	Loaner         *User            `bun:"rel:belongs-to,join:loaner_id=id" json:"loaner,omitempty"`
	LocationID     *int             `json:"location_id"`
	Location       *Location        `bun:"rel:belongs-to,join:location_id=id" json:"location,omitempty"`
	CoverImage     *string          `json:"cover_image"`
	Status         string           `bun:",nullzero" json:"status"`
	BookCopyGenres []*BookCopyGenre `bun:"rel:has-many,join:id=book_copy_id" json:"book_copy_genres,omitempty"`
}

// GenreNames returns the names of the loaded genres. BookCopyGenres.Genre has
// to be loaded for this to return anything.
func (b *BookCopy) GenreNames() []string {
	names := make([]string, 0, len(b.BookCopyGenres))
	for _, bcg := range b.BookCopyGenres {
		if bcg.Genre != nil {
			names = append(names, bcg.Genre.Name)
		}
	}
	return names
}

// AuthorName returns the author's display name, or "" when there is none.
func (b *BookCopy) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.DisplayName()
}
