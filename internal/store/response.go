// Package store implements the persistence facade. Every entity is created,
// mutated and deleted through a Manager; mutations run inside a transaction
// and report their outcome as a Response instead of returning raw errors.
package store

import "fmt"

// Severity tags on a Response, matching flash message categories.
const (
	TypeSuccess = "success"
	TypeDanger  = "danger"
	TypeInfo    = "info"
)

// Response is the uniform result of every facade mutation: a severity tag and
// a human-readable message suitable for flashing to the user.
type Response struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// OK reports whether the operation succeeded.
func (r Response) OK() bool { return r.Type == TypeSuccess }

// Success builds a success Response with a formatted message.
func Success(format string, args ...any) Response {
	return Response{Type: TypeSuccess, Message: fmt.Sprintf(format, args...)}
}

// Danger builds a failure Response with a formatted message.
func Danger(format string, args ...any) Response {
	return Response{Type: TypeDanger, Message: fmt.Sprintf(format, args...)}
}

// Info builds an informational Response with a formatted message.
func Info(format string, args ...any) Response {
	return Response{Type: TypeInfo, Message: fmt.Sprintf(format, args...)}
}
