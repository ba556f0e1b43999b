package wire

import (
	"errors"
	"fmt"
)

// ErrDecode is matched by every DecodeError via errors.Is.
var ErrDecode = errors.New("wire: decode failed")

// DecodeError reports a payload value whose shape cannot be decoded.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("wire: %s", e.Reason)
	}
	return fmt.Sprintf("wire: %s: %s", e.Field, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func decodeErr(field, reason string) error {
	return &DecodeError{Field: field, Reason: reason}
}

// WithField returns err annotated with field when it is a DecodeError lacking one.
func WithField(err error, field string) error {
	var de *DecodeError
	if errors.As(err, &de) && de.Field == "" {
		return &DecodeError{Field: field, Reason: de.Reason}
	}
	return err
}
