package project

import "strings"

type CreateProjectDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

func (d *CreateProjectDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

// UpdateProjectDTO is a partial update; nil fields are left alone.
type UpdateProjectDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsActive    *bool   `json:"isActive"`
}

func (d *UpdateProjectDTO) Normalize() {
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		d.Name = &name
	}
	if d.Description != nil {
		desc := strings.TrimSpace(*d.Description)
		d.Description = &desc
	}
}

func (d *UpdateProjectDTO) Values() map[string]any {
	values := map[string]any{}
	if d.Name != nil {
		values["name"] = *d.Name
	}
	if d.Description != nil {
		values["description"] = *d.Description
	}
	if d.IsActive != nil {
		values["is_active"] = *d.IsActive
	}
	return values
}
