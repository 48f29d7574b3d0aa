// Package http implements [ragchat.ChatService] and [ragchat.UploadService]
// against the backend's HTTP API.
//
// Both endpoints share one cookie jar so that session cookies set by the
// backend are sent back on every request.
package http

const (
	uploadPath  = "/api/upload"
	chatPath    = "/chatgpt"
	uploadField = "file"

	defaultMimeType = "application/octet-stream"

	// maxErrorDetail bounds, in display columns, how much of a non-JSON
	// error body is quoted in an error message.
	maxErrorDetail = 200
)

// chatRequest is the JSON body sent to the chat endpoint.
type chatRequest struct {
	Content string `json:"content"`
}

// chatResponse is the JSON body returned by the chat endpoint. Response is a
// pointer so a missing field can be told apart from an empty reply.
type chatResponse struct {
	Response *string `json:"response"`
}

// apiError covers the error shapes common Python web frameworks return.
type apiError struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}
