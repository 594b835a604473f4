package avatar

import (
	"github.com/h2non/filetype/types"
)

// ContentKind defines what a reference turned out to contain
type ContentKind int

const (
	// Raster is opaque binary content handed to the renderer unchanged
	Raster ContentKind = iota
	// Vector is SVG markup eligible for recoloring
	Vector
	// RemoteUnresolved is a URL whose content has not been fetched yet
	RemoteUnresolved
)

func (k ContentKind) String() string {
	switch k {
	case Vector:
		return "vector"
	case RemoteUnresolved:
		return "remote"
	}
	return "raster"
}

// Classified is the per-call determination of what a reference points to
type Classified struct {
	Kind     ContentKind
	Text     string     // decoded markup, Vector only
	Data     []byte     // raw content, Raster only
	URL      string     // RemoteUnresolved only
	FileType types.Type // sniffed type of Data, filetype.Unknown when not recognized
}

// Form tells which field of Resolved carries the content
type Form int

const (
	// FormDataURI is recolored SVG markup encoded as a data URI
	FormDataURI Form = iota
	// FormData is raw raster content
	FormData
	// FormURL is a remote URL the renderer should load directly
	FormURL
)

// Resolved is the final icon content ready for rasterization
type Resolved struct {
	Form     Form
	DataURI  string
	Data     []byte
	URL      string
	FileType types.Type
}

// String returns the textual content: the data URI, the URL, or the raw
// data as a string
func (r *Resolved) String() string {
	switch r.Form {
	case FormDataURI:
		return r.DataURI
	case FormURL:
		return r.URL
	}
	return string(r.Data)
}
