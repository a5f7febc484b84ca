package wpl

import "fmt"

// ReasonKind enumerates the WparseReason taxonomy: per-record data errors
// that never abort the worker, only route the record to an infra group.
type ReasonKind int

const (
	ReasonLessData ReasonKind = iota
	ReasonFormatError
	ReasonParseError
	ReasonNotComplete
	ReasonEmpty
	ReasonMissingField
	ReasonMissingConfig
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonLessData:
		return "less_data"
	case ReasonFormatError:
		return "format_error"
	case ReasonParseError:
		return "parse_error"
	case ReasonNotComplete:
		return "not_complete"
	case ReasonEmpty:
		return "empty"
	case ReasonMissingField:
		return "missing_field"
	case ReasonMissingConfig:
		return "missing_config"
	default:
		return "unknown"
	}
}

// WparseError carries a ReasonKind plus an optional detail/hint/field name
// and the diagnostic group/field position where it occurred.
type WparseError struct {
	Reason ReasonKind
	Detail string
	Hint   string
	Name   string // MissingField / MissingConfig target name
	At     string // group[N]/field[N] descriptor
}

func (e *WparseError) Error() string {
	base := e.Reason.String()
	if e.Name != "" {
		base += ":" + e.Name
	}
	if e.Detail != "" {
		base += ": " + e.Detail
	}
	if e.At != "" {
		base = fmt.Sprintf("%s (%s)", base, e.At)
	}
	if e.Hint != "" {
		base += " (hint: " + e.Hint + ")"
	}
	return base
}

func errLessData(at string) *WparseError       { return &WparseError{Reason: ReasonLessData, At: at} }
func errEmpty() *WparseError                   { return &WparseError{Reason: ReasonEmpty} }
func errNotComplete(at string) *WparseError     { return &WparseError{Reason: ReasonNotComplete, At: at} }
func errFormat(detail, hint, at string) *WparseError {
	return &WparseError{Reason: ReasonFormatError, Detail: detail, Hint: hint, At: at}
}
func errParse(detail, at string) *WparseError {
	return &WparseError{Reason: ReasonParseError, Detail: detail, At: at}
}
func errMissingField(name, at string) *WparseError {
	return &WparseError{Reason: ReasonMissingField, Name: name, At: at}
}
