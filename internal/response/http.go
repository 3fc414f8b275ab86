package response

import (
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
)

// TimestampFormat is ISO-8601 with milliseconds in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Envelope is returned for every data query. Exactly one of Data and
// Districts is set.
type Envelope struct {
	Success   bool           `json:"success"`
	Source    types.Source   `json:"source"`
	Count     int            `json:"count"`
	Data      []types.Record `json:"data,omitempty"`
	Districts []string       `json:"districts,omitempty"`
	Timestamp string         `json:"timestamp"`
	Note      string         `json:"note,omitempty"`
}

type APIResponse[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
	Data      T      `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func NewError(kind, message string, at time.Time) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     kind,
		Message:   message,
		Timestamp: Timestamp(at),
	}
}
