package avatar

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Source classifies icon references. It only holds its filesystem and is
// safe for concurrent use.
type Source struct {
	fs afero.Fs
}

// NewSource creates a Source reading local files from fs, or from the
// operating system when fs is nil
func NewSource(fs afero.Fs) *Source {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Source{fs: fs}
}

// IsAcceptable tells whether Classify would succeed in recognizing the
// shape of ref. Files are only stat'ed and blobs are never read.
func (s *Source) IsAcceptable(ref Reference) bool {
	switch ref.Kind() {
	case RefBytes:
		return true
	case RefPath:
		_, ok := s.localFile(ref.Text())
		return ok
	case RefString:
		if _, ok := s.localFile(ref.Text()); ok {
			return true
		}
		return IsAbsoluteURL(ref.Text())
	case RefBlob:
		return ref.Blob() != nil
	case RefURL:
		return IsAbsoluteURL(ref.Text())
	}
	return false
}

// Classify determines what ref contains. Buffers, local files and blobs are
// read and tested for SVG markup; URLs are left unresolved for the resolver
// to fetch.
func (s *Source) Classify(ctx context.Context, ref Reference) (*Classified, error) {
	switch ref.Kind() {
	case RefBytes:
		return classifyContent(ref.Bytes(), ""), nil

	case RefPath, RefString:
		if path, ok := s.localFile(ref.Text()); ok {
			data, err := afero.ReadFile(s.fs, path)
			if err != nil {
				return nil, &MediaFetchError{URL: path, Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
			}
			return classifyContent(data, ""), nil
		}
		if ref.Kind() == RefPath {
			return nil, unsupportedMediaError(ref.Text(), "Local file does not exist", xerrors.Caller(xErrorsFrameCaller))
		}

	case RefBlob:
		if ref.Blob() != nil {
			data, err := readBlob(ctx, ref.Blob())
			if err != nil {
				return nil, &MediaFetchError{URL: ref.String(), Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
			}
			return classifyContent(data, ""), nil
		}
	}

	if ref.Kind() == RefString || ref.Kind() == RefURL {
		if IsAbsoluteURL(ref.Text()) {
			return &Classified{Kind: RemoteUnresolved, URL: ref.Text()}, nil
		}
	}
	return nil, unsupportedMediaError(ref.String(), "Reference is neither a buffer, an existing file, a blob nor an absolute URL", xerrors.Caller(xErrorsFrameCaller))
}

// localFile expands a leading ~ and reports whether the result names a regular file
func (s *Source) localFile(name string) (string, bool) {
	if len(strings.TrimSpace(name)) == 0 {
		return "", false
	}
	path, err := homedir.Expand(name)
	if err != nil {
		path = name
	}
	info, err := s.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

func readBlob(ctx context.Context, blob Blob) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := blob.Open(ctx)
	if err != nil {
		return nil, xerrors.Errorf("Unable to open blob: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, xerrors.Errorf("Unable to read blob: %w", err)
	}
	return data, ctx.Err()
}

// IsAbsoluteURL tests a string to determine if it is a well-structured absolute URL.
// http and https URLs also need a host.
func IsAbsoluteURL(rawURL string) bool {
	if len(strings.TrimSpace(rawURL)) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}
