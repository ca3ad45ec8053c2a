package books

import "github.com/bookcross/bookcross/pkg/models"

type ListBookCopiesQuery struct {
	Limit      int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset     int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	OwnerID    *int    `query:"owner_id" json:"owner_id,omitempty" validate:"omitempty,min=1"`
	LoanerID   *int    `query:"loaner_id" json:"loaner_id,omitempty" validate:"omitempty,min=1"`
	AuthorID   *int    `query:"author_id" json:"author_id,omitempty" validate:"omitempty,min=1"`
	LocationID *int    `query:"location_id" json:"location_id,omitempty" validate:"omitempty,min=1"`
	GenreID    *int    `query:"genre_id" json:"genre_id,omitempty" validate:"omitempty,min=1"`
	Status     *string `query:"status" json:"status,omitempty" validate:"omitempty,bookstatus"`
}

type CreateBookCopyPayload struct {
	Title         string  `json:"title" mod:"trim" validate:"required,max=200"`
	AuthorID      *int    `json:"author_id,omitempty" validate:"omitempty,min=1"`
	Summary       string  `json:"summary" validate:"max=1000"`
	ISBN          *string `json:"isbn,omitempty" validate:"omitempty,isbn"`
	LoanStartDate *string `json:"loan_start_date,omitempty" validate:"omitempty,date"`
	OwnerID       *int    `json:"owner_id,omitempty" validate:"omitempty,min=1"`
	LoanerID      *int    `json:"loaner_id,omitempty" validate:"omitempty,min=1"`
	LocationID    *int    `json:"location_id,omitempty" validate:"omitempty,min=1"`
	CoverImage    *string `json:"cover_image,omitempty" validate:"omitempty,objectkey"`
	Status        string  `json:"status" default:"available" validate:"bookstatus"`
	GenreIDs      []int   `json:"genre_ids,omitempty" validate:"dive,min=1"`
}

// UpdateBookCopyPayload leaves fields that aren't sent untouched. Sending 0
// for author_id, loaner_id or location_id, or an empty string for the string
// fields, clears them.
type UpdateBookCopyPayload struct {
	Title         *string `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=200"`
	AuthorID      *int    `json:"author_id,omitempty" validate:"omitempty,min=0"`
	Summary       *string `json:"summary,omitempty" validate:"omitempty,max=1000"`
	ISBN          *string `json:"isbn,omitempty" validate:"omitempty,isbn"`
	LoanStartDate *string `json:"loan_start_date,omitempty" validate:"omitempty,date"`
	LoanerID      *int    `json:"loaner_id,omitempty" validate:"omitempty,min=0"`
	LocationID    *int    `json:"location_id,omitempty" validate:"omitempty,min=0"`
	CoverImage    *string `json:"cover_image,omitempty" validate:"omitempty,objectkey"`
	Status        *string `json:"status,omitempty" validate:"omitempty,bookstatus"`
	GenreIDs      *[]int  `json:"genre_ids,omitempty" validate:"omitempty,dive,min=1"`
}

// BookCopyResponse is a book copy with its derived, display-ready fields.
type BookCopyResponse struct {
	*models.BookCopy
	StatusLabel   string   `json:"status_label"`
	TimeRemaining string   `json:"time_remaining"`
	LocationPath  *string  `json:"location_path"`
	CoverURL      *string  `json:"cover_url"`
	Genres        []string `json:"genres"`
}

type ListHistoryQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}
