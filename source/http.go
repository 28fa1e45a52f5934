package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"
	"gopkg.in/matryer/try.v1"

	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/errutil"
	"github.com/stagekit/stagekit/must"
	"github.com/stagekit/stagekit/song"
)

// HTTPSource loads records from the backing REST data service. Transient
// failures are retried a few times before giving up; a missing record maps
// to ErrNotFound.
type HTTPSource struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

func NewHTTPSource(cfg config.Source, logger zerolog.Logger) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("source base URL is empty")
	}
	if _, err := url.Parse(cfg.BaseURL); nil != err {
		return nil, fmt.Errorf("invalid source base URL %q: %v", cfg.BaseURL, err)
	}
	return &HTTPSource{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: config.SetlistLoadTimeout}, //nolint:exhaustruct
		logger:  logger.With().Str("component", "source").Logger(),
	}, nil
}

func (s *HTTPSource) LoadSetlist(ctx context.Context, id string) (*song.Setlist, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/setlists/%s", s.baseURL, url.PathEscape(id)))
	if nil != err {
		return nil, err
	}
	list, err := parseSetlist(gjson.ParseBytes(body))
	if nil != err {
		return nil, flaw.From(fmt.Errorf("failed to parse setlist record: %v", err)).Append(flaw.P{"setlist_id": id})
	}
	return list, nil
}

func (s *HTTPSource) LoadSong(ctx context.Context, id string) (*song.Song, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/songs/%s", s.baseURL, url.PathEscape(id)))
	if nil != err {
		return nil, err
	}
	sng, err := parseSong(gjson.ParseBytes(body))
	if nil != err {
		return nil, flaw.From(fmt.Errorf("failed to parse song record: %v", err)).Append(flaw.P{"song_id": id})
	}
	return sng, nil
}

func (s *HTTPSource) get(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte
	err := try.Do(func(attempt int) (bool, error) {
		b, err := s.getOnce(ctx, reqURL)
		if nil != err {
			if errors.Is(err, ErrNotFound) || errutil.IsContext(ctx) {
				return false, err
			}
			s.logger.Debug().Err(err).Int("attempt", attempt).Str("url", reqURL).Msg("Source request failed")
			return attempt < try.MaxRetries, err
		}
		body = b
		return false, nil
	})
	if nil != err {
		if errors.Is(err, ErrNotFound) || errutil.IsContext(ctx) {
			return nil, err
		}
		return nil, must.BeFlaw(err).Append(flaw.P{"url": reqURL})
	}
	return body, nil
}

func (s *HTTPSource) getOnce(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		return nil, flaw.From(fmt.Errorf("failed to create source request: %v", err)).Append(flaw.P{"url": reqURL})
	}
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		return nil, flaw.From(fmt.Errorf("source request failed: %v", err)).Append(flaw.P{"url": reqURL})
	}
	defer func() {
		if err := resp.Body.Close(); nil != err {
			s.logger.Error().Err(err).Msg("Failed to close source response body")
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		flawP := flaw.P{"url": reqURL, "response": errutil.HTTPResponseFlawPayload(resp)}
		return nil, flaw.From(fmt.Errorf("source request returned unexpected status %d", resp.StatusCode)).Append(flawP)
	}

	body, err := io.ReadAll(resp.Body)
	if nil != err {
		flawP := flaw.P{"url": reqURL, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to read source response body: %v", err)).Append(flawP)
	}
	return body, nil
}
