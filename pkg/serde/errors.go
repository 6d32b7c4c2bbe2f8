package serde

import (
	"errors"
	"fmt"
)

// EncodeError reports a failure to lower a value into the intermediate form
// or onto the wire. What names the value, code or variant that failed.
type EncodeError struct {
	What string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return "encode " + e.What
	}
	return fmt.Sprintf("encode %s: %v", e.What, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports malformed or unintelligible wire input. What names the
// value, code or variant that failed.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode " + e.What
	}
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// wrapEncode annotates err with what unless it already carries an
// EncodeError, so the innermost annotation wins.
func wrapEncode(what string, err error) error {
	var ee *EncodeError
	if errors.As(err, &ee) {
		return err
	}
	return &EncodeError{What: what, Err: err}
}

func wrapDecode(what string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{What: what, Err: err}
}
