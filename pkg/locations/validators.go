package locations

type ListLocationsQuery struct {
	Limit   int   `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset  int   `query:"offset" json:"offset,omitempty" validate:"min=0"`
	OwnerID *int  `query:"owner_id" json:"owner_id,omitempty" validate:"omitempty,min=1"`
	IsLeaf  *bool `query:"is_leaf" json:"is_leaf,omitempty"`
}

type CreateLocationPayload struct {
	Title    string `json:"title" mod:"trim" validate:"required,max=100"`
	ParentID *int   `json:"parent_id,omitempty" validate:"omitempty,min=1"`
	IsLeaf   bool   `json:"is_leaf"`
	// OwnerID lets admins create locations for someone else.
	OwnerID *int `json:"owner_id,omitempty" validate:"omitempty,min=1"`
}

type UpdateLocationPayload struct {
	Title *string `json:"title,omitempty" mod:"trim" validate:"omitempty,min=1,max=100"`
	// ParentID 0 moves the location to the root.
	ParentID *int  `json:"parent_id,omitempty" validate:"omitempty,min=0"`
	IsLeaf   *bool `json:"is_leaf,omitempty"`
}
