package fault

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies an error so the handler can map it to an HTTP status.
type Kind int

const (
	Auth Kind = iota
	Validation
	Conflict
	Vendor
)

// Error carries a kind plus an optional structured detail payload.
// Detail ends up both in the error string and, when it is a
// map[string]any, merged into the JSON error body.
type Error struct {
	Kind   Kind
	Msg    string
	Detail any
}

func (e *Error) Error() string {
	if e.Detail == nil {
		return e.Msg
	}
	b, err := json.Marshal(e.Detail)
	if err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Msg, b)
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func WithDetail(kind Kind, msg string, detail any) *Error {
	return &Error{Kind: kind, Msg: msg, Detail: detail}
}

// KindOf reports the kind of err if it is (or wraps) a fault Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
