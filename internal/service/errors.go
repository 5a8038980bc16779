package service

import "errors"

// UserError is an error caused by user input. Its message is safe to show.
type UserError struct {
	msg string
}

func (e *UserError) Error() string {
	return e.msg
}

func newUserError(msg string) error {
	return &UserError{msg: msg}
}

// asUserError re-types a validation error so handlers can show it.
func asUserError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{msg: err.Error()}
}

// UserMessage returns the user-facing message when err was caused by user input.
func UserMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.msg, true
	}
	return "", false
}
