package authors

type ListAuthorsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type CreateAuthorPayload struct {
	FirstName   string  `json:"first_name" validate:"max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	DateOfDeath *string `json:"date_of_death,omitempty" validate:"omitempty,date"`
}

// UpdateAuthorPayload clears a date when it's sent as an empty string.
type UpdateAuthorPayload struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	DateOfDeath *string `json:"date_of_death,omitempty" validate:"omitempty,date"`
}
