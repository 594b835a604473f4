package avatar

import "fmt"

const (
	UnableToInspectMediaTypeFromContentType string = "AVATAR_W-0100"
	ContentTypeMissing                      string = "AVATAR_W-0101"
	CustomIconIgnoredInSyncMode             string = "AVATAR_W-0200"
	UnableToCloseMedia                      string = "AVATAR_W-0300"
)

// Issue is a structured problem identification with context information
type Issue interface {
	IssueContext() interface{} // the reference or URL the issue was found on
	IssueCode() string         // useful to uniquely identify a particular code
	Issue() string             // human readable description

	IsError() bool   // this issue is an error
	IsWarning() bool // this issue is a warning
}

type issue struct {
	context string
	code    string
	message string
	isError bool
}

// NewIssue creates an issue for the given context, e.g. a URL
func NewIssue(context string, code string, message string, isError bool) Issue {
	result := new(issue)
	result.context = context
	result.code = code
	result.message = message
	result.isError = isError
	return result
}

func (i issue) IssueContext() interface{} {
	return i.context
}

func (i issue) IssueCode() string {
	return i.code
}

func (i issue) Issue() string {
	return i.message
}

func (i issue) IsError() bool {
	return i.isError
}

func (i issue) IsWarning() bool {
	return !i.isError
}

// Error satisfies the Go error contract
func (i issue) Error() string {
	return fmt.Sprintf("%s %s (%s)", i.code, i.message, i.context)
}
