package dto

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// FieldErrorResponse describes one rejected input field.
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error   bool                 `json:"error"`
	Message string               `json:"message"`
	Fields  []FieldErrorResponse `json:"fields"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
