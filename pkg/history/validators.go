package history

type ListEntriesQuery struct {
	Limit      int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset     int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	BookCopyID *string `query:"book_copy_id" json:"book_copy_id,omitempty" validate:"omitempty,uuid"`
}
