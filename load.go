package avatar

import (
	"context"
	"io"

	filetype "github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"golang.org/x/xerrors"
)

// sniffHeaderSize is how much of the content filetype needs to match a type
const sniffHeaderSize = 261

// Load downloads a pass-through URL returned in a FormURL result, for
// renderers that cannot load URLs themselves. The returned type is
// filetype.Unknown when the content is not recognized.
func (r *MediaResolver) Load(ctx context.Context, rawURL string) ([]byte, types.Type, error) {
	if !IsAbsoluteURL(rawURL) {
		return nil, filetype.Unknown, unsupportedMediaError(rawURL, "Not an absolute URL", xerrors.Caller(xErrorsFrameCaller))
	}
	resp, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, filetype.Unknown, err
	}
	defer r.closeBody(ctx, rawURL, resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, filetype.Unknown, &MediaFetchError{URL: rawURL, Err: xerrors.Errorf("Copy error during download: %w", err), Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	return data, sniff(data), nil
}

func sniff(data []byte) types.Type {
	head := data
	if len(head) > sniffHeaderSize {
		head = head[:sniffHeaderSize]
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return filetype.Unknown
	}
	return kind
}
