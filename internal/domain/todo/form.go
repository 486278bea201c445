package todo

import (
	"net/url"
	"strconv"
)

// Field names accepted by the mutation entry points.
const (
	FieldTitle    = "title"
	FieldID       = "id"
	FieldNewTitle = "newTitle"
)

// Form is a flat set of submitted fields.
type Form map[string]string

// FormFromValues keeps the first value of every key.
func FormFromValues(values url.Values) Form {
	form := make(Form, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			form[key] = vals[0]
		}
	}
	return form
}

// Title returns the create title, or ErrInvalidInput when it is empty.
func (f Form) Title() (string, error) {
	title := f[FieldTitle]
	if title == "" {
		return "", ErrInvalidInput
	}
	return title, nil
}

// NewTitle returns the update title, or ErrInvalidInput when it is empty.
func (f Form) NewTitle() (string, error) {
	title := f[FieldNewTitle]
	if title == "" {
		return "", ErrInvalidInput
	}
	return title, nil
}

// ID parses the record id as a base-10 integer.
func (f Form) ID() (int64, error) {
	raw, ok := f[FieldID]
	if !ok {
		return 0, ErrInvalidInput
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidInput
	}
	return id, nil
}
