package model

// Envelope statuses.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not found"
)

// Envelope wraps every JSON response. Exactly one of Data and Message is set.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
