package domain

// Album - группа изображений одного человека, созданная по вырезанному лицу.
type Album struct {
	ID         string    `json:"id"`
	CreatedAt  Timestamp `json:"created_at"`
	ProjectID  string    `json:"project_id"`
	PersonName string    `json:"person_name"`
	ImageGroup []string  `json:"image_group"`
}

// CropArea - прямоугольник в пикселях исходного изображения.
type CropArea struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty сообщает, что область еще не вычислена.
func (a CropArea) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// CroppedFile - закодированный JPEG, готовый к multipart-отправке.
type CroppedFile struct {
	Name        string
	ContentType string
	Data        []byte
}
