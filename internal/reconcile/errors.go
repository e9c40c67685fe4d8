package reconcile

import "strings"

// MaxReportedErrors is how many icon errors are kept for reporting.
const MaxReportedErrors = 5

// TruncationMarker ends a report that dropped errors.
const TruncationMarker = "etc..."

// ErrorList collects recoverable per-icon errors. The zero value is ready
// to use. Only the first MaxReportedErrors messages are kept, but every
// Add is counted.
type ErrorList struct {
	messages []string
	total    int
}

// Add records one error.
func (l *ErrorList) Add(msg string) {
	l.total++
	if len(l.messages) < MaxReportedErrors {
		l.messages = append(l.messages, msg)
	}
}

// Len returns how many errors were added, including dropped ones.
func (l *ErrorList) Len() int {
	if l == nil {
		return 0
	}
	return l.total
}

// Truncated reports whether messages were dropped.
func (l *ErrorList) Truncated() bool {
	return l.Len() > MaxReportedErrors
}

// Messages returns the kept messages.
func (l *ErrorList) Messages() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.messages...)
}

// Report returns the kept messages followed by TruncationMarker when
// messages were dropped.
func (l *ErrorList) Report() []string {
	lines := l.Messages()
	if l.Truncated() {
		lines = append(lines, TruncationMarker)
	}
	return lines
}

// Error implements error so a non-empty list can be returned as one.
func (l *ErrorList) Error() string {
	return strings.Join(l.Report(), "\n")
}

// Err returns l as an error, or nil when it is empty.
func (l *ErrorList) Err() error {
	if l.Len() == 0 {
		return nil
	}
	return l
}
