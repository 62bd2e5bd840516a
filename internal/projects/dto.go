package projects

// CreateProjectRequest opens a new project.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Client      string `json:"client" validate:"required,max=200"`
	SiteAddress string `json:"site_address" validate:"max=500"`
}

// UpdateProjectRequest edits project master data.
type UpdateProjectRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,max=200"`
	Client      *string        `json:"client,omitempty" validate:"omitempty,max=200"`
	SiteAddress *string        `json:"site_address,omitempty" validate:"omitempty,max=500"`
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE ON_HOLD COMPLETE"`
}

// ListProjectsRequest filters the project list.
type ListProjectsRequest struct {
	Status *ProjectStatus `json:"status,omitempty"`
	Limit  int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset int            `json:"offset" validate:"gte=0"`
}
