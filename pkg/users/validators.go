package users

import "github.com/bookcross/bookcross/pkg/models"

type CreateUserPayload struct {
	Username             string  `json:"username" mod:"trim" validate:"required,min=3,max=50"`
	Email                *string `json:"email" mod:"trim" validate:"omitempty,email"`
	Password             string  `json:"password" validate:"required,min=8"`
	RoleID               int     `json:"role_id" validate:"required"`
	RequirePasswordReset bool    `json:"require_password_reset"`
}

type UpdateUserPayload struct {
	Username *string `json:"username" mod:"trim" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" mod:"trim" validate:"omitempty,email"`
	RoleID   *int    `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

// apply copies the changed fields onto user and returns their columns.
func (p UpdateUserPayload) apply(user *models.User) []string {
	columns := []string{}
	if p.Username != nil && *p.Username != user.Username {
		user.Username = *p.Username
		columns = append(columns, "username")
	}
	if p.Email != nil {
		user.Email = p.Email
		columns = append(columns, "email")
	}
	if p.RoleID != nil && *p.RoleID != user.RoleID {
		user.RoleID = *p.RoleID
		columns = append(columns, "role_id")
	}
	if p.IsActive != nil && *p.IsActive != user.IsActive {
		user.IsActive = *p.IsActive
		columns = append(columns, "is_active")
	}
	return columns
}

// ResetPasswordPayload carries current_password only for a voluntary self
// reset.
type ResetPasswordPayload struct {
	CurrentPassword      *string `json:"current_password"`
	NewPassword          string  `json:"new_password" validate:"required,min=8"`
	RequirePasswordReset bool    `json:"require_password_reset"`
}

type ListUsersQuery struct {
	Limit  int `query:"limit" json:"limit" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset" validate:"min=0"`
}
