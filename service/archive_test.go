package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/erroneousboat/slackarchive-term/api"
	"github.com/erroneousboat/slackarchive-term/config"
)

const archiveFixture = `{
	"messages": [
		{"type": "message", "user": "U2", "text": "newest <@U1>", "ts": "1490000200.000000"},
		{"type": "message", "user": "U1", "text": "see <#C1|general> and <https://example.com|the site> &amp; more", "ts": "1490000100.000000", "thread_ts": "1490000100.000000", "reply_count": 3},
		{"type": "message", "username": "bot", "bot_id": "B1", "text": "oldest", "ts": "1490000000.000000",
		 "attachments": [{"pretext": "pre", "fields": [{"title": "Status", "value": "ok"}]}]}
	],
	"total": 120,
	"aggs": {"buckets": {"C1": 120}},
	"related": {"users": {
		"U1": {"user_id": "U1", "name": "erroneousboat", "profile": {"real_name": ""}},
		"U2": {"user_id": "U2", "name": "jdoe", "profile": {"real_name": "Jane Doe"}}
	}}
}`

func newArchiveServer(t *testing.T, queries chan<- string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/team", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"team": [
			{"team_id": "T0", "domain": "old", "is_disabled": true},
			{"team_id": "T1", "domain": "acme", "name": "Acme"}
		], "status": "ok"}`))
	})
	mux.HandleFunc("/v1/channels", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"channels": [
			{"channel_id": "C3", "name": "zeta"},
			{"channel_id": "C4", "name": "attic", "is_archived": true},
			{"channel_id": "C2", "name": "alpha"},
			{"channel_id": "C1", "name": "general", "is_general": true}
		], "total": 4}`))
	})
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		if queries != nil {
			queries <- r.URL.RawQuery
		}
		w.Write([]byte(archiveFixture))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, url, team string, cache *UserCache) *ArchiveService {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Archive.URL = url
	cfg.Archive.Team = team
	cfg.Archive.PageSize = 50

	svc, err := NewArchiveService(cfg, cache)
	if err != nil {
		t.Fatalf("NewArchiveService: %v", err)
	}
	return svc
}

func TestResolveTeam(t *testing.T) {
	srv := newArchiveServer(t, nil)

	svc := newTestService(t, srv.URL, "", nil)
	team, err := svc.ResolveTeam(context.Background())
	if err != nil {
		t.Fatalf("ResolveTeam: %v", err)
	}
	if team.ID != "T1" {
		t.Errorf("team = %q, want first enabled team T1", team.ID)
	}

	svc = newTestService(t, srv.URL, "missing", nil)
	if _, err := svc.ResolveTeam(context.Background()); !errors.Is(err, ErrNoTeam) {
		t.Errorf("err = %v, want ErrNoTeam", err)
	}
}

func TestGetChannelsOrder(t *testing.T) {
	srv := newArchiveServer(t, nil)
	svc := newTestService(t, srv.URL, "acme", nil)

	if _, err := svc.GetChannels(context.Background()); !errors.Is(err, ErrNoTeam) {
		t.Fatalf("GetChannels before ResolveTeam: err = %v, want ErrNoTeam", err)
	}

	if _, err := svc.ResolveTeam(context.Background()); err != nil {
		t.Fatal(err)
	}
	items, err := svc.GetChannels(context.Background())
	if err != nil {
		t.Fatalf("GetChannels: %v", err)
	}

	want := []string{"general", "alpha", "zeta", "attic"}
	if len(items) != len(want) {
		t.Fatalf("got %d channels, want %d", len(items), len(want))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("channel %d = %q, want %q", i, items[i].Name, name)
		}
	}
	if !items[3].Archived {
		t.Error("attic should be marked archived")
	}

	ch, ok := svc.ChannelByName("#alpha")
	if !ok || ch.ID != "C2" {
		t.Errorf("ChannelByName(#alpha) = %+v, %v", ch, ok)
	}
	if _, ok := svc.ChannelByName("nope"); ok {
		t.Error("ChannelByName(nope) should not match")
	}
}

func TestGetMessages(t *testing.T) {
	queries := make(chan string, 1)
	srv := newArchiveServer(t, queries)

	cache, err := OpenMemoryUserCache()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	svc := newTestService(t, srv.URL, "acme", cache)
	if _, err := svc.ResolveTeam(context.Background()); err != nil {
		t.Fatal(err)
	}

	page, err := svc.GetMessages(context.Background(), "C1", 3)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}

	q := <-queries
	if q != "channel=C1&offset=100&size=50&team=T1" {
		t.Errorf("query = %q", q)
	}

	if page.Page != 3 || page.Total != 120 || page.Pages() != 3 {
		t.Errorf("page = %d total = %d pages = %d", page.Page, page.Total, page.Pages())
	}
	if len(page.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(page.Messages))
	}

	// Oldest first.
	oldest, middle, newest := page.Messages[0], page.Messages[1], page.Messages[2]
	if oldest.Content != "oldest" || newest.ID != "1490000200.000000" {
		t.Errorf("messages not reversed: %+v", page.Messages)
	}

	if oldest.Name != "bot" {
		t.Errorf("bot name = %q, want bot", oldest.Name)
	}
	if len(oldest.Messages) != 2 || oldest.Messages[0].Content != "Status ok" {
		t.Errorf("attachments = %+v", oldest.Messages)
	}

	if newest.Name != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", newest.Name)
	}
	if newest.Content != "newest @erroneousboat" {
		t.Errorf("content = %q", newest.Content)
	}

	if middle.Content != "see #general and the site & more" {
		t.Errorf("content = %q", middle.Content)
	}
	if middle.Thread != "1490000100.000000" || middle.Replies != 3 {
		t.Errorf("thread = %q replies = %d", middle.Thread, middle.Replies)
	}
	if !middle.Time.Equal(time.Unix(1490000100, 0)) {
		t.Errorf("time = %v", middle.Time)
	}

	if name, ok := cache.Get("U2"); !ok || name != "Jane Doe" {
		t.Errorf("persistent cache U2 = %q, %v", name, ok)
	}
}

func TestSearchAndThreadQueries(t *testing.T) {
	queries := make(chan string, 1)
	srv := newArchiveServer(t, queries)
	svc := newTestService(t, srv.URL, "acme", nil)
	if _, err := svc.ResolveTeam(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Search(context.Background(), "", "deploy", 1); err != nil {
		t.Fatal(err)
	}
	if q := <-queries; q != "aggs=1&q=deploy&size=50&team=T1" {
		t.Errorf("search query = %q", q)
	}

	thread, err := svc.GetThread(context.Background(), "C1", "1490000100.000000")
	if err != nil {
		t.Fatal(err)
	}
	if q := <-queries; q != "channel=C1&size=50&sort=asc&team=T1&thread=1490000100.000000" {
		t.Errorf("thread query = %q", q)
	}
	if thread.Messages[0].Content != "newest @erroneousboat" {
		t.Errorf("thread replies should keep server order, got %q first", thread.Messages[0].Content)
	}

	total, err := svc.Latest(context.Background(), "C1")
	if err != nil {
		t.Fatal(err)
	}
	<-queries
	if total != 120 {
		t.Errorf("Latest = %d, want 120", total)
	}
}

func TestGetUserNameFallbacks(t *testing.T) {
	cache, err := OpenMemoryUserCache()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if err := cache.Set("U9", "cached"); err != nil {
		t.Fatal(err)
	}

	svc := NewArchiveServiceWithClient(config.DefaultConfig(), nil, cache)
	if got := svc.GetUserName("U9"); got != "cached" {
		t.Errorf("GetUserName(U9) = %q, want cached", got)
	}
	if got := svc.GetUserName("U404"); got != "unknown (U404)" {
		t.Errorf("GetUserName(U404) = %q", got)
	}
}

func TestServiceSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "", nil)
	_, err := svc.ResolveTeam(context.Background())

	var se *api.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Errorf("err = %v, want StatusError 502", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	got := ParseTimestamp("1490000000.500000")
	if got.Unix() != 1490000000 || got.Nanosecond() < 499000000 {
		t.Errorf("ParseTimestamp = %v", got)
	}
	if !ParseTimestamp("garbage").IsZero() {
		t.Error("bad timestamp should give the zero time")
	}
}

func TestSearchHighlightedHit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/team", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"team": [{"team_id": "T1", "domain": "acme"}], "status": "ok"}`))
	})
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"messages": [
				{"type": "message", "user": "U1", "text": "deploy [hl]broke[/hl] prod, [hl]broke[/hl] again", "ts": "1490000100.000000",
				 "attachments": [{"text": "[hl]rollback[/hl] &amp; retry"}]}
			],
			"total": 1,
			"aggs": {"buckets": {"C1": 1}}
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestService(t, srv.URL, "acme", nil)
	if _, err := svc.ResolveTeam(context.Background()); err != nil {
		t.Fatal(err)
	}

	page, err := svc.Search(context.Background(), "", "broke", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(page.Messages))
	}

	hit := page.Messages[0]
	if hit.Content != "deploy broke prod, broke again" {
		t.Errorf("content = %q", hit.Content)
	}
	if len(hit.Matches) != 1 || hit.Matches[0] != "broke" {
		t.Errorf("matches = %q, want [broke]", hit.Matches)
	}

	if len(hit.Messages) != 1 {
		t.Fatalf("attachments = %+v", hit.Messages)
	}
	att := hit.Messages[0]
	if att.Content != "rollback & retry" {
		t.Errorf("attachment content = %q", att.Content)
	}
	if len(att.Matches) != 1 || att.Matches[0] != "rollback" {
		t.Errorf("attachment matches = %q, want [rollback]", att.Matches)
	}
}
