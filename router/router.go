// Package router maps archive web paths such as /general/page-2/ts-1490000000.000100
// to the view they open, so links copied from the web front-end work in the
// terminal.
package router

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrNoRoute = errors.New("no route")

type Name string

const (
	Home                 Name = "home"
	Channel              Name = "channel"
	ChannelSearch        Name = "channel_search"
	ChannelSearchPage    Name = "channel_search_page"
	ChannelSearchMessage Name = "channel_search_message"
	ChannelPage          Name = "channel_page"
	ChannelMessage       Name = "channel_message"
)

// Route is a parsed path. Page is 0 when the path has no page segment.
type Route struct {
	Name    Name
	Channel string
	Search  string
	Page    int
	ID      string
}

// Parse matches path against the route table. A query string, if any, is
// ignored.
func Parse(path string) (Route, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return Route{Name: Home}, nil
	}

	segs := strings.Split(path, "/")
	for i, s := range segs {
		u, err := url.PathUnescape(s)
		if err != nil {
			return Route{}, errors.Wrapf(ErrNoRoute, "%q: %v", path, err)
		}
		segs[i] = u
	}

	r := Route{Name: Channel, Channel: segs[0]}
	if r.Channel == "" {
		return Route{}, errors.Wrapf(ErrNoRoute, "%q", path)
	}
	rest := segs[1:]

	if len(rest) > 0 {
		if q, ok := strings.CutPrefix(rest[0], "search-"); ok && q != "" {
			r.Name, r.Search = ChannelSearch, q
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		n, ok := pageOf(rest[0])
		if !ok {
			return Route{}, errors.Wrapf(ErrNoRoute, "%q", path)
		}
		r.Page = n
		if r.Search != "" {
			r.Name = ChannelSearchPage
		} else {
			r.Name = ChannelPage
		}
		rest = rest[1:]
	}

	// ts- is only valid below a page segment.
	if len(rest) > 0 && r.Page > 0 {
		id, ok := strings.CutPrefix(rest[0], "ts-")
		if !ok || id == "" {
			return Route{}, errors.Wrapf(ErrNoRoute, "%q", path)
		}
		r.ID = id
		if r.Search != "" {
			r.Name = ChannelSearchMessage
		} else {
			r.Name = ChannelMessage
		}
		rest = rest[1:]
	}

	if len(rest) > 0 {
		return Route{}, errors.Wrapf(ErrNoRoute, "%q", path)
	}
	return r, nil
}

func pageOf(seg string) (int, bool) {
	s, ok := strings.CutPrefix(seg, "page-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Path renders the route back into a path Parse accepts.
func (r Route) Path() string {
	if r.Name == Home || r.Channel == "" {
		return "/"
	}

	var b strings.Builder
	b.WriteString("/" + url.PathEscape(r.Channel))
	if r.Search != "" {
		b.WriteString("/search-" + url.PathEscape(r.Search))
	}
	if r.Page > 0 {
		b.WriteString("/page-" + strconv.Itoa(r.Page))
		if r.ID != "" {
			b.WriteString("/ts-" + url.PathEscape(r.ID))
		}
	}
	return b.String()
}

// ParseQuery returns the query parameters of a URL or path. It returns an
// empty set when there is no query string.
func ParseQuery(rawURL string) url.Values {
	i := strings.Index(rawURL, "?")
	if i < 0 {
		return url.Values{}
	}
	q := rawURL[i+1:]
	if j := strings.Index(q, "#"); j >= 0 {
		q = q[:j]
	}
	// Malformed pairs are skipped, the rest is kept.
	v, _ := url.ParseQuery(q)
	return v
}

// NewRoute names the route of a chat view. id is dropped when page is 0
// because ts- is only valid below a page segment.
func NewRoute(channel, search string, page int, id string) Route {
	if channel == "" {
		return Route{Name: Home}
	}

	r := Route{Name: Channel, Channel: channel, Search: search}
	if search != "" {
		r.Name = ChannelSearch
	}
	if page < 1 {
		return r
	}

	r.Page = page
	switch {
	case id != "" && search != "":
		r.Name, r.ID = ChannelSearchMessage, id
	case id != "":
		r.Name, r.ID = ChannelMessage, id
	case search != "":
		r.Name = ChannelSearchPage
	default:
		r.Name = ChannelPage
	}
	return r
}

// ParseURL accepts either a path or a full front-end URL and returns its
// route together with its query parameters.
func ParseURL(rawURL string) (Route, url.Values, error) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		path = u.EscapedPath()
	}

	r, err := Parse(path)
	if err != nil {
		return Route{}, nil, err
	}
	return r, ParseQuery(rawURL), nil
}
