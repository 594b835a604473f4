package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/xerrors"
)

// RefKind identifies the active variant of a Reference
type RefKind int

const (
	// RefNone is the zero Reference, i.e. no icon
	RefNone RefKind = iota
	// RefBytes is an in-memory byte buffer
	RefBytes
	// RefString is a string that is either a local path or a remote URL,
	// decided at classification time
	RefString
	// RefPath is a string that must name a local file
	RefPath
	// RefURL is a string that must be an absolute URL
	RefURL
	// RefBlob is an opaque handle whose content is read lazily
	RefBlob
)

func (k RefKind) String() string {
	switch k {
	case RefBytes:
		return "bytes"
	case RefString:
		return "string"
	case RefPath:
		return "path"
	case RefURL:
		return "url"
	case RefBlob:
		return "blob"
	}
	return "none"
}

// Blob is an opaque binary object whose content can only be read lazily
type Blob interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// BytesBlob serves a byte slice as a Blob
type BytesBlob []byte

// Open satisfies Blob
func (b BytesBlob) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// ReaderBlob serves an io.Reader as a Blob. The reader is consumed by the
// first Open.
type ReaderBlob struct {
	R io.Reader
}

// Open satisfies Blob
func (b ReaderBlob) Open(ctx context.Context) (io.ReadCloser, error) {
	if b.R == nil {
		return nil, xerrors.New("ReaderBlob has no reader")
	}
	if rc, ok := b.R.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(b.R), nil
}

// Reference is a custom icon reference. Exactly one variant is active; the
// zero value means no icon.
type Reference struct {
	kind RefKind
	text string
	data []byte
	blob Blob
}

// FromBytes references an in-memory buffer
func FromBytes(data []byte) Reference {
	return Reference{kind: RefBytes, data: data}
}

// FromString references either a local file or a remote URL; local files win
func FromString(s string) Reference {
	return Reference{kind: RefString, text: s}
}

// FromPath references a local file
func FromPath(path string) Reference {
	return Reference{kind: RefPath, text: path}
}

// FromURL references a remote resource
func FromURL(rawURL string) Reference {
	return Reference{kind: RefURL, text: rawURL}
}

// FromBlob references a lazily read object
func FromBlob(b Blob) Reference {
	return Reference{kind: RefBlob, blob: b}
}

// NewReference maps an arbitrary value onto a Reference. Accepted are
// []byte, string, *url.URL, Blob, io.Reader and Reference itself.
func NewReference(v interface{}) (Reference, error) {
	switch value := v.(type) {
	case Reference:
		return value, nil
	case []byte:
		return FromBytes(value), nil
	case string:
		return FromString(value), nil
	case *url.URL:
		if value == nil {
			break
		}
		return FromURL(value.String()), nil
	case Blob:
		return FromBlob(value), nil
	case io.Reader:
		return FromBlob(ReaderBlob{R: value}), nil
	}
	return Reference{}, unsupportedMediaError(fmt.Sprintf("%T", v), "Unsupported reference type", xerrors.Caller(xErrorsFrameCaller))
}

// Kind returns the active variant
func (r Reference) Kind() RefKind {
	return r.kind
}

// IsZero returns true if no icon is referenced
func (r Reference) IsZero() bool {
	return r.kind == RefNone
}

// Text returns the path or URL of string variants
func (r Reference) Text() string {
	return r.text
}

// Bytes returns the buffer of the bytes variant
func (r Reference) Bytes() []byte {
	return r.data
}

// Blob returns the handle of the blob variant
func (r Reference) Blob() Blob {
	return r.blob
}

// String describes the reference without dumping buffer contents
func (r Reference) String() string {
	switch r.kind {
	case RefBytes:
		return fmt.Sprintf("bytes(%d)", len(r.data))
	case RefBlob:
		return fmt.Sprintf("blob(%T)", r.blob)
	case RefNone:
		return "none"
	}
	return r.text
}
