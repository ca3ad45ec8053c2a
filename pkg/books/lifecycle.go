package books

import (
	"fmt"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
)

// Snapshot is the lifecycle-relevant state of a book copy as it was loaded.
// Updates compare against it to find out whether the status changed.
type Snapshot struct {
	Status     string
	LoanerID   *int
	ReservedAt *time.Time
}

func SnapshotOf(book *models.BookCopy) Snapshot {
	return Snapshot{
		Status:     book.Status,
		LoanerID:   book.LoanerID,
		ReservedAt: book.ReservedAt,
	}
}

// Transition is the outcome of ApplyTransition.
type Transition struct {
	// Entry is nil when the status didn't change.
	Entry *models.HistoryEntry
	// Columns lists the columns that ApplyTransition modified on the book.
	Columns []string
}

func (t Transition) StatusChanged() bool {
	return t.Entry != nil
}

// ApplyTransition applies the side effects of moving book from before to its
// current status. The book is modified in place.
func ApplyTransition(before Snapshot, book *models.BookCopy, now time.Time, labeler Labeler) Transition {
	t := Transition{}

	if !models.StatusHoldsLoaner(book.Status) && book.LoanerID != nil {
		book.LoanerID = nil
		t.Columns = append(t.Columns, "loaner_id")
	}

	if book.Status == before.Status {
		return t
	}

	comment := fmt.Sprintf("Status changed from %q to %q", labeler.StatusLabel(before.Status), labeler.StatusLabel(book.Status))
	t.Entry = &models.HistoryEntry{
		CreatedAt: now,
		LoanerID:  book.LoanerID,
		Comment:   comment,
	}
	if book.ID != "" {
		id := book.ID
		t.Entry.BookCopyID = &id
	}

	switch book.Status {
	case models.BookStatusOnLoan:
		book.ReservedAt = nil
		t.Columns = append(t.Columns, "reserved_at")
	case models.BookStatusReserved:
		reservedAt := now
		book.ReservedAt = &reservedAt
		t.Columns = append(t.Columns, "reserved_at")
	}

	return t
}

// ReservationState describes how much of a reservation is left.
type ReservationState struct {
	Reserved  bool
	Expired   bool
	Remaining time.Duration
}

func ComputeReservationState(book *models.BookCopy, now time.Time, timeout time.Duration) ReservationState {
	if book.Status != models.BookStatusReserved || book.ReservedAt == nil {
		return ReservationState{}
	}

	elapsed := now.Sub(*book.ReservedAt)
	if elapsed > timeout {
		return ReservationState{Reserved: true, Expired: true}
	}
	return ReservationState{Reserved: true, Remaining: timeout - elapsed}
}

// ValidateLoanerForStatus checks a submitted status/loaner pair and returns
// the loaner that should be stored. Statuses that can't hold a loaner drop it.
func ValidateLoanerForStatus(status string, loanerID *int) (*int, error) {
	if !models.StatusHoldsLoaner(status) {
		return nil, nil
	}
	if loanerID == nil {
		return nil, errcodes.FieldValidationError("loaner_id", fmt.Sprintf("%q is required when status is %q", "loaner_id", status))
	}
	return loanerID, nil
}
