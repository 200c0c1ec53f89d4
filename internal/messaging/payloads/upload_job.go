package payloads

// UploadJob описывает задание на загрузку ZIP-архива в проект
// через RabbitMQ.
type UploadJob struct {
	ProjectID string `json:"project_id"`
	ZipPath   string `json:"zip_path"`
}
