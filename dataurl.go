package avatar

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/xerrors"
)

// defaultDataURLMediaType applies when a data URL declares no media type
const defaultDataURLMediaType = "text/plain;charset=US-ASCII"

// dataURLResponse decodes data:[<mediatype>][;base64],<data> into a synthetic
// 200 response so it can take the same path as fetched content
func dataURLResponse(rawURL string) (*http.Response, error) {
	comma := strings.IndexByte(rawURL, ',')
	if comma < 0 {
		return nil, xerrors.New("Data URL has no comma")
	}
	header := rawURL[len("data:"):comma]
	payload := rawURL[comma+1:]

	isBase64 := false
	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		isBase64 = true
		header = header[:len(header)-len(";base64")]
	}
	if len(header) == 0 {
		header = defaultDataURLMediaType
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, xerrors.Errorf("Unable to unescape data URL: %w", err)
	}
	data := []byte(unescaped)
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(unescaped))
		if err != nil {
			return nil, xerrors.Errorf("Unable to decode base64 data URL: %w", err)
		}
	}

	resp := &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: int64(len(data)),
	}
	resp.Header.Set("Content-Type", header)
	return resp, nil
}
