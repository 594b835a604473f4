package avatar

import (
	"mime"
	"strings"
)

// VectorMediaType is the media type of SVG markup
const VectorMediaType = "image/svg+xml"

// MediaTypeParams contains what was parsed from MediaType
type MediaTypeParams map[string]string

// ContentType encapsulates the various descriptions of the kind of content
// declared by a remote server
type ContentType struct {
	ContType      string          `json:"contentType"`
	MedType       string          `json:"mediaType"`
	MedTypeParams MediaTypeParams `json:"mediaTypeParams"`
}

// NewContentType parses a Content-Type header value. The raw value is kept
// even when it cannot be parsed.
func NewContentType(ref string, contentType string) (ContentType, Issue) {
	result := ContentType{ContType: contentType}
	if len(strings.TrimSpace(contentType)) == 0 {
		return result, NewIssue(ref, ContentTypeMissing, "Content-Type header is blank", false)
	}
	var mediaTypeError error
	result.MedType, result.MedTypeParams, mediaTypeError = mime.ParseMediaType(contentType)
	if mediaTypeError != nil {
		return result, NewIssue(ref, UnableToInspectMediaTypeFromContentType, mediaTypeError.Error(), false)
	}
	return result, nil
}

func (t ContentType) ContentType() string {
	return t.ContType
}

func (t ContentType) MediaType() string {
	return t.MedType
}

func (t ContentType) MediaTypeParams() MediaTypeParams {
	return t.MedTypeParams
}

// IsVector returns true if the declared media type is SVG markup
func (t ContentType) IsVector() bool {
	return t.MedType == VectorMediaType
}
