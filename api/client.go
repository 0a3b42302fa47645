// Package api is a client for the archive server's REST API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const userAgent = "slackarchive-term"

// HTTPClient represents the functionality we need from an *http.Client, or
// similar.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Limiter blocks until a request may be sent.
type Limiter interface {
	Wait(ctx context.Context) error
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("archive api: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Client talks to the /v1 endpoints of an archive server.
type Client struct {
	base    *url.URL
	http    HTTPClient
	limiter Limiter
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse archive url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("archive url %q needs a scheme and host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/"

	c := &Client{base: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Teams lists the enabled teams, optionally narrowed to one domain.
func (c *Client) Teams(ctx context.Context, domain string) ([]Team, error) {
	params := url.Values{}
	if domain != "" {
		params.Set("domain", domain)
	}

	var resp struct {
		Teams  []Team `json:"team"`
		Status string `json:"status"`
	}
	if err := c.get(ctx, "team", params, &resp); err != nil {
		return nil, errors.Wrap(err, "get teams")
	}
	return resp.Teams, nil
}

// Channels lists the archived channels of a team.
func (c *Client) Channels(ctx context.Context, teamID string) (*ChannelsPage, error) {
	params := url.Values{}
	params.Set("team_id", teamID)

	var page ChannelsPage
	if err := c.get(ctx, "channels", params, &page); err != nil {
		return nil, errors.Wrap(err, "get channels")
	}
	return &page, nil
}

// Messages fetches one page of messages.
func (c *Client) Messages(ctx context.Context, q MessagesQuery) (*MessagesPage, error) {
	var page MessagesPage
	if err := c.get(ctx, "messages", q.Values(), &page); err != nil {
		return nil, errors.Wrap(err, "get messages")
	}
	return &page, nil
}

// Values encodes the query the way the archive front-end does.
func (q MessagesQuery) Values() url.Values {
	params := url.Values{}
	params.Set("size", strconv.Itoa(q.Size))
	params.Set("team", q.Team)

	if q.Channel != "" {
		params.Set("channel", q.Channel)
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Search != "" {
		params.Set("q", q.Search)
		if q.Size > 0 {
			params.Set("aggs", "1")
		}
	}
	if q.Sort == SortAsc {
		params.Set("sort", string(SortAsc))
	}
	if !q.To.IsZero() {
		params.Set("to", strconv.FormatFloat(float64(q.To.UnixMicro())/1000000, 'f', -1, 64))
	}
	if q.Thread != "" {
		params.Set("thread", q.Thread)
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u := c.base.ResolveReference(&url.URL{Path: path, RawQuery: params.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)

	log.Debug().Str("request_id", reqID).Str("url", u.String()).Msg("api: request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
