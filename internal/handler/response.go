package handler

// Response is the success body for endpoints that return data. Message is
// omitted for plain reads.
type Response[T any] struct {
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// MessageResponse is the success body for endpoints with nothing to return.
type MessageResponse struct {
	Message string `json:"message"`
}
