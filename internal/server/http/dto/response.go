package dto

// Response is the envelope shared by every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Ok builds a successful envelope.
func Ok(message string) Response {
	return Response{Success: true, Message: message}
}

// Failure builds a failed envelope.
func Failure(message string) Response {
	return Response{Message: message}
}
