package config

import "strings"

type fieldError struct {
	field string
	err   error
}

// ValidationError collects every invalid field found by Validate.
type ValidationError struct {
	errs []fieldError
}

func (e *ValidationError) Add(field string, err error) {
	e.errs = append(e.errs, fieldError{field: field, err: err})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.errs) > 0
}

// Fields returns the invalid field names in the order they were found.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.errs))
	for i, fe := range e.errs {
		fields[i] = fe.field
	}
	return fields
}

func (e *ValidationError) Error() string {
	builder := strings.Builder{}
	builder.WriteString("invalid config:")
	for _, fe := range e.errs {
		builder.WriteString("\n  ")
		builder.WriteString(fe.field)
		builder.WriteString(": ")
		builder.WriteString(fe.err.Error())
	}
	return builder.String()
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.errs))
	for i, fe := range e.errs {
		errs[i] = fe.err
	}
	return errs
}
