package retry

import (
	"context"
	"io"
	"net/http"
	"slices"
)

// Doer is the HTTP client collaborator; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchWithRetry issues req through client, retrying responses whose status
// is in opts.RetryableStatuses and transient transport failures. Any other
// non-2xx status fails immediately with a KindHTTPStatus *Error. On success
// the caller owns resp.Body.
//
// Requests with a body must be replayable (GetBody set, as
// http.NewRequestWithContext does for in-memory readers) to be retried.
func FetchWithRetry(ctx context.Context, client Doer, req *http.Request, opts Options) (*http.Response, error) {
	opts = opts.withDefaults()
	first := true
	return Do(ctx, func(ctx context.Context) (*http.Response, error) {
		r, err := cloneRequest(ctx, req, first)
		first = false
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(r)
		if err != nil {
			return nil, TransportError(err)
		}
		if slices.Contains(opts.RetryableStatuses, resp.StatusCode) || resp.StatusCode < 200 || resp.StatusCode > 299 {
			discard(resp)
			return nil, StatusError(resp.StatusCode)
		}
		return resp, nil
	}, opts)
}

func cloneRequest(ctx context.Context, req *http.Request, first bool) (*http.Request, error) {
	r := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, &Error{Kind: KindOther, Err: err}
		}
		r.Body = body
		return r, nil
	}
	if !first {
		return nil, &Error{Kind: KindOther, Err: errBodyConsumed}
	}
	return r, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
