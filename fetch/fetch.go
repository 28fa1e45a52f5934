package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/stagekit/stagekit/errutil"
)

// ErrUnavailable marks a fetch that failed for a reason the performance view
// should absorb (bad status, timeout, transport error). Callers render a
// no-sheet fallback instead of propagating it.
var ErrUnavailable = errors.New("content unavailable")

// Payload is a fetched binary asset.
type Payload struct {
	Bytes    []byte
	MIMEType string
}

// Func is the binary fetcher contract consumed by the content cache.
type Func func(ctx context.Context, url string) (*Payload, error)

type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout}, //nolint:exhaustruct
		logger: logger,
	}
}

// Fetch downloads the asset at url. The MIME type comes from the response
// Content-Type header, falling back to content sniffing when absent.
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, error) {
	flawP := flaw.P{"url": url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create content request: %v", err)).Append(flawP)
	}

	resp, err := c.http.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, context.DeadlineExceeded)
		default:
			c.logger.Debug().Err(err).Str("url", url).Msg("Content request failed")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	defer func() {
		if err := resp.Body.Close(); nil != err {
			c.logger.Error().Err(err).Msg("Failed to close content response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		flawP["response"] = errutil.HTTPResponseFlawPayload(resp)
		c.logger.Debug().Int("status_code", resp.StatusCode).Str("url", url).Msg("Content request returned non-ok status")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := readResponseBody(ctx, resp)
	if nil != err {
		return nil, err
	}

	return &Payload{Bytes: body, MIMEType: responseMIMEType(resp, body)}, nil
}

func readResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, context.DeadlineExceeded)
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read content response body: %v", err)).Append(flawP)
		}
	}
	return body, nil
}

func responseMIMEType(resp *http.Response, body []byte) string {
	ct := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || ct == "application/octet-stream" {
		return http.DetectContentType(body)
	}
	return ct
}
