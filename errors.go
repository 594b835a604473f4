package avatar

import (
	"fmt"

	"golang.org/x/xerrors"
)

// xErrorsFrameCaller is passed into error functions to indicate the default stack frame
const xErrorsFrameCaller = 1

// Error is coded error for more granular tracking
type Error struct {
	Reference string
	Message   string
	Code      int
	Frame     xerrors.Frame
}

// FormatError will print a simple message to the Printer object. This will be what you see when you Println or use %s/%v in a formatted print statement.
func (e Error) FormatError(p xerrors.Printer) error {
	if len(e.Reference) > 0 {
		p.Printf("AVATAR-%d %s (%s)", e.Code, e.Message, e.Reference)
	} else {
		p.Printf("AVATAR-%d %s", e.Code, e.Message)
	}
	e.Frame.Format(p)
	return nil
}

// Format provide backwards compatibility with pre-xerrors package
func (e Error) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e Error) Error() string {
	return fmt.Sprint(e)
}

// UnsupportedMediaError is returned when a reference is neither a byte buffer,
// an existing local file, a blob nor an absolute URL. Substitute a valid
// reference or omit the icon.
type UnsupportedMediaError struct {
	Reference string
	Reason    string
	Frame     xerrors.Frame
}

func unsupportedMediaError(ref string, reason string, frame xerrors.Frame) *UnsupportedMediaError {
	return &UnsupportedMediaError{Reference: ref, Reason: reason, Frame: frame}
}

// FormatError will print a simple message to the Printer object. This will be what you see when you Println or use %s/%v in a formatted print statement.
func (e UnsupportedMediaError) FormatError(p xerrors.Printer) error {
	return Error{Reference: e.Reference, Message: e.Reason, Code: 100, Frame: e.Frame}.FormatError(p)
}

// Format provide backwards compatibility with pre-xerrors package
func (e UnsupportedMediaError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e UnsupportedMediaError) Error() string {
	return fmt.Sprint(e)
}

// MediaFetchError is returned when a remote reference could not be retrieved,
// either because of a transport failure or a non-success HTTP status.
// HTTPStatusCode is zero for transport failures.
type MediaFetchError struct {
	URL            string
	HTTPStatusCode int
	Err            error
	Frame          xerrors.Frame
}

// FormatError will print a simple message to the Printer object. This will be what you see when you Println or use %s/%v in a formatted print statement.
func (e MediaFetchError) FormatError(p xerrors.Printer) error {
	if e.HTTPStatusCode != 0 {
		p.Printf("AVATAR-200 Expected HTTP Response Status Code 2xx, got %d (%s)", e.HTTPStatusCode, e.URL)
	} else {
		p.Printf("AVATAR-200 Unable to fetch media (%s)", e.URL)
	}
	e.Frame.Format(p)
	return e.Err
}

// Format provide backwards compatibility with pre-xerrors package
func (e MediaFetchError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e MediaFetchError) Error() string {
	return fmt.Sprint(e)
}

// Unwrap returns the transport error, if any
func (e MediaFetchError) Unwrap() error {
	return e.Err
}

// MalformedVectorError is returned when content looked like SVG markup but
// could not be parsed. There is no fallback to raster treatment.
type MalformedVectorError struct {
	Err   error
	Frame xerrors.Frame
}

// FormatError will print a simple message to the Printer object. This will be what you see when you Println or use %s/%v in a formatted print statement.
func (e MalformedVectorError) FormatError(p xerrors.Printer) error {
	p.Printf("AVATAR-300 Malformed SVG markup")
	e.Frame.Format(p)
	return e.Err
}

// Format provide backwards compatibility with pre-xerrors package
func (e MalformedVectorError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

func (e MalformedVectorError) Error() string {
	return fmt.Sprint(e)
}

// Unwrap returns the parse error
func (e MalformedVectorError) Unwrap() error {
	return e.Err
}
