package domain

// Project - пользовательская коллекция изображений.
type Project struct {
	ID          string     `json:"id"`
	ProjectName string     `json:"project_name"`
	ImageCount  int        `json:"image_count"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}
