package avatar

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// HTTPUserAgent is sent with every remote icon request unless a request preparer overrides it
const HTTPUserAgent = "github.com/lectio/avatar"

// HTTPTimeout is the timeout of the default HTTP client
const HTTPTimeout = time.Second * 90

// Resolver turns icon references into content ready for rasterization.
// Implementations are safe for concurrent use.
type Resolver interface {
	IsAcceptable(ref Reference) bool
	Resolve(ctx context.Context, ref Reference, color string) (*Resolved, error)
}

// NewResolver creates a resolver. Options are recognized by the interfaces
// they implement: an afero.Fs, a VectorCodec, an HTTP client provider or
// func(context.Context) *http.Client, a request preparer or
// func(context.Context, *http.Client, *http.Request), and a warning tracker.
func NewResolver(options ...interface{}) *MediaResolver {
	result := &MediaResolver{}
	result.initOptions(options...)
	return result
}

type httpClientProvider interface {
	HTTPClient(context.Context) *http.Client
}

type httpRequestPreparer interface {
	OnPrepareHTTPRequest(context.Context, *http.Client, *http.Request)
}

type warningTracker interface {
	OnWarning(ctx context.Context, issue Issue)
}

// MediaResolver is the default Resolver
type MediaResolver struct {
	source            *Source
	codec             VectorCodec
	clientProvider    httpClientProvider
	provideClientFunc func(ctx context.Context) *http.Client
	reqPreparer       httpRequestPreparer
	prepReqFunc       func(ctx context.Context, client *http.Client, req *http.Request)
	warningTracker    warningTracker
}

func (r *MediaResolver) initOptions(options ...interface{}) {
	r.warningTracker = r // we implemented a default version
	r.codec = XMLCodec{}
	var fs afero.Fs

	for _, option := range options {
		if wt, ok := option.(warningTracker); ok {
			r.warningTracker = wt
		}
		if instance, ok := option.(httpClientProvider); ok {
			r.clientProvider = instance
		}
		if fn, ok := option.(func(ctx context.Context) *http.Client); ok {
			r.provideClientFunc = fn
		}
		if instance, ok := option.(httpRequestPreparer); ok {
			r.reqPreparer = instance
		}
		if fn, ok := option.(func(ctx context.Context, client *http.Client, req *http.Request)); ok {
			r.prepReqFunc = fn
		}
		if instance, ok := option.(afero.Fs); ok {
			fs = instance
		}
		if instance, ok := option.(VectorCodec); ok {
			r.codec = instance
		}
	}
	r.source = NewSource(fs)
}

func (r *MediaResolver) httpClient(ctx context.Context) *http.Client {
	if r.clientProvider != nil {
		return r.clientProvider.HTTPClient(ctx)
	}

	if r.provideClientFunc != nil {
		return r.provideClientFunc(ctx)
	}

	return &http.Client{
		Timeout: HTTPTimeout,
	}
}

func (r *MediaResolver) prepareHTTPRequest(ctx context.Context, client *http.Client, req *http.Request) {
	req.Header.Set("User-Agent", HTTPUserAgent)

	if r.reqPreparer != nil {
		r.reqPreparer.OnPrepareHTTPRequest(ctx, client, req)
	}

	if r.prepReqFunc != nil {
		r.prepReqFunc(ctx, client, req)
	}
}

// Source returns the classifier used by this resolver
func (r *MediaResolver) Source() *Source {
	return r.source
}

// IsAcceptable is a cheap synchronous check whether Resolve is worth attempting
func (r *MediaResolver) IsAcceptable(ref Reference) bool {
	return r.source.IsAcceptable(ref)
}

// Resolve classifies ref and produces its final content: SVG markup is
// recolored and returned as a data URI, raster content is returned
// unchanged, and remote URLs are fetched first unless they turn out not to
// be SVG, in which case the URL itself is returned.
func (r *MediaResolver) Resolve(ctx context.Context, ref Reference, color string) (*Resolved, error) {
	classified, err := r.source.Classify(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch classified.Kind {
	case Vector:
		return r.recolor(classified.Text, color)
	case RemoteUnresolved:
		return r.resolveRemote(ctx, classified.URL, color)
	}
	return &Resolved{Form: FormData, Data: classified.Data, FileType: classified.FileType}, nil
}

func (r *MediaResolver) recolor(text string, color string) (*Resolved, error) {
	doc, err := r.codec.Parse(text)
	if err != nil {
		return nil, &MalformedVectorError{Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	if err := Recolor(doc, color); err != nil {
		return nil, &MalformedVectorError{Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	markup, err := r.codec.Serialize(doc)
	if err != nil {
		return nil, &MalformedVectorError{Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	return &Resolved{Form: FormDataURI, DataURI: r.codec.DataURI(markup)}, nil
}

func (r *MediaResolver) resolveRemote(ctx context.Context, rawURL string, color string) (*Resolved, error) {
	resp, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer r.closeBody(ctx, rawURL, resp.Body)

	contentType, issue := NewContentType(rawURL, resp.Header.Get("Content-Type"))
	if issue != nil {
		r.warningTracker.OnWarning(ctx, issue)
	}
	if !contentType.IsVector() {
		return &Resolved{Form: FormURL, URL: rawURL}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &MediaFetchError{URL: rawURL, Err: xerrors.Errorf("Unable to read response body: %w", err), Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	text, err := DecodeText(body, contentType.ContentType())
	if err != nil {
		return nil, &MalformedVectorError{Err: err, Frame: xerrors.Caller(xErrorsFrameCaller)}
	}
	return r.recolor(text, color)
}

// fetch retrieves rawURL; data: URLs are decoded locally, everything else goes
// through the HTTP client. Only 2xx responses are returned.
func (r *MediaResolver) fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	if strings.HasPrefix(strings.ToLower(rawURL), "data:") {
		resp, err := dataURLResponse(rawURL)
		if err != nil {
			return nil, &MediaFetchError{URL: rawURL, Err: err, Frame: xerrors.Caller(xErrorsFrameCaller + 1)}
		}
		return resp, nil
	}

	// Use the standard Go HTTP library method to retrieve the content; the default will automatically follow redirects
	httpClient := r.httpClient(ctx)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if reqErr != nil {
		return nil, &MediaFetchError{URL: rawURL, Err: xerrors.Errorf("Unable to create HTTP request: %w", reqErr), Frame: xerrors.Caller(xErrorsFrameCaller + 1)}
	}
	r.prepareHTTPRequest(ctx, httpClient, req)
	resp, getErr := httpClient.Do(req)
	if getErr != nil {
		return nil, &MediaFetchError{URL: rawURL, Err: xerrors.Errorf("Unable to execute HTTP GET request: %w", getErr), Frame: xerrors.Caller(xErrorsFrameCaller + 1)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.closeBody(ctx, rawURL, resp.Body)
		return nil, &MediaFetchError{URL: rawURL, HTTPStatusCode: resp.StatusCode, Frame: xerrors.Caller(xErrorsFrameCaller + 1)}
	}
	return resp, nil
}

func (r *MediaResolver) closeBody(ctx context.Context, rawURL string, body io.Closer) {
	if err := body.Close(); err != nil {
		r.warningTracker.OnWarning(ctx, NewIssue(rawURL, UnableToCloseMedia, err.Error(), false))
	}
}

// OnWarning is the default warning tracker if nothing else is provided in initOptions()
func (r *MediaResolver) OnWarning(ctx context.Context, issue Issue) {
}
