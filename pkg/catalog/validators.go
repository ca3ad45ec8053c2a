package catalog

type ListEntriesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type ListPageQuery struct {
	Page int `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
}
