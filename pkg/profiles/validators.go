package profiles

type UpdateProfilePayload struct {
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	Photo       *string `json:"photo,omitempty" validate:"omitempty,objectkey"`
}

type ProfileResponse struct {
	UserID      int     `json:"user_id"`
	Username    string  `json:"username"`
	DateOfBirth *string `json:"date_of_birth"`
	Photo       *string `json:"photo"`
	PhotoURL    string  `json:"photo_url"`
}
