package roles

type PermissionInput struct {
	Resource  string `json:"resource" validate:"required"`
	Operation string `json:"operation" validate:"required,oneof=read write"`
}

type CreateRolePayload struct {
	Name        string            `json:"name" validate:"required,max=50"`
	Permissions []PermissionInput `json:"permissions" validate:"dive"`
}

// UpdateRolePayload replaces all permissions when permissions is sent.
type UpdateRolePayload struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Permissions *[]PermissionInput `json:"permissions,omitempty" validate:"omitempty,dive"`
}

type ListRolesQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}
