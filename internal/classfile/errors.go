package classfile

import "fmt"

// DecodeError reports malformed class bytes. A class that fails to decode is
// never partially usable; callers leave the original bytes untouched.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classfile: decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classfile: decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a re-serialization failure after mutation.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("classfile: encode: %s", e.Reason)
}

func decodeErrf(err error, format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Err: err}
}
