package service

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/erroneousboat/slackarchive-term/api"
	"github.com/erroneousboat/slackarchive-term/components"
	"github.com/erroneousboat/slackarchive-term/config"
)

var ErrNoTeam = errors.New("team is disabled or does not exist")

var (
	mentionRe = regexp.MustCompile(`<@(\w+)(?:\|([^>]*))?>`)
	channelRe = regexp.MustCompile(`<#(\w+)(?:\|([^>]*))?>`)
	linkRe    = regexp.MustCompile(`<((?:https?|mailto):[^|>]+)(?:\|([^>]*))?>`)

	// Search hits come back wrapped in these tags.
	highlightRe = regexp.MustCompile(`\[hl\](.*?)\[/hl\]`)
)

// Archive is the part of api.Client the service needs.
type Archive interface {
	Teams(ctx context.Context, domain string) ([]api.Team, error)
	Channels(ctx context.Context, teamID string) (*api.ChannelsPage, error)
	Messages(ctx context.Context, q api.MessagesQuery) (*api.MessagesPage, error)
}

// ArchiveService turns archive API responses into components for the panes.
type ArchiveService struct {
	Config          *config.Config
	Client          Archive
	PersistentCache *UserCache

	mu        sync.Mutex
	team      api.Team
	channels  map[string]api.Channel
	userCache map[string]string
}

// NewArchiveService builds the API client with the configured rate limit.
// cache may be nil.
func NewArchiveService(cfg *config.Config, cache *UserCache) (*ArchiveService, error) {
	limiter := NewRateLimiter(
		cfg.RateLimit.Burst,
		time.Duration(cfg.RateLimit.RefillMillis)*time.Millisecond,
	)

	client, err := api.New(cfg.Archive.URL, api.WithLimiter(limiter))
	if err != nil {
		return nil, err
	}

	return NewArchiveServiceWithClient(cfg, client, cache), nil
}

func NewArchiveServiceWithClient(cfg *config.Config, client Archive, cache *UserCache) *ArchiveService {
	return &ArchiveService{
		Config:          cfg,
		Client:          client,
		PersistentCache: cache,
		channels:        make(map[string]api.Channel),
		userCache:       make(map[string]string),
	}
}

// ResolveTeam picks the configured team, or the first enabled one when no
// team is configured.
func (s *ArchiveService) ResolveTeam(ctx context.Context) (api.Team, error) {
	teams, err := s.Client.Teams(ctx, s.Config.Archive.Team)
	if err != nil {
		return api.Team{}, err
	}

	for _, t := range teams {
		if t.IsDisabled {
			continue
		}
		if s.Config.Archive.Team != "" && t.Domain != s.Config.Archive.Team {
			continue
		}

		s.mu.Lock()
		s.team = t
		s.mu.Unlock()

		log.Debug().Str("team", t.ID).Str("domain", t.Domain).Msg("service: team resolved")
		return t, nil
	}

	return api.Team{}, errors.Wrapf(ErrNoTeam, "domain %q", s.Config.Archive.Team)
}

func (s *ArchiveService) Team() api.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team
}

// GetChannels lists the team's channels: general first, then by name, with
// archived channels last.
func (s *ArchiveService) GetChannels(ctx context.Context) ([]components.ChannelItem, error) {
	team := s.Team()
	if team.ID == "" {
		return nil, ErrNoTeam
	}

	page, err := s.Client.Channels(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	chans := page.Channels
	sort.SliceStable(chans, func(i, j int) bool {
		a, b := chans[i], chans[j]
		if a.IsArchived != b.IsArchived {
			return !a.IsArchived
		}
		if a.IsGeneral != b.IsGeneral {
			return a.IsGeneral
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	s.mu.Lock()
	s.channels = make(map[string]api.Channel, len(chans))
	for _, ch := range chans {
		s.channels[ch.ID] = ch
	}
	s.mu.Unlock()

	items := make([]components.ChannelItem, 0, len(chans))
	for _, ch := range chans {
		items = append(items, createChannelItem(ch))
	}
	return items, nil
}

// ChannelByName finds a loaded channel by name, with or without a leading #.
func (s *ArchiveService) ChannelByName(name string) (components.ChannelItem, bool) {
	name = strings.TrimPrefix(name, "#")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.Name == name {
			return createChannelItem(ch), true
		}
	}
	return components.ChannelItem{}, false
}

func (s *ArchiveService) channelName(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[id]
	return ch.Name, ok
}

// GetMessages returns page n (1-based) of a channel's history. Page 1 holds
// the newest messages.
func (s *ArchiveService) GetMessages(ctx context.Context, channelID string, page int) (components.MessagePage, error) {
	return s.fetch(ctx, channelID, "", page)
}

// Search returns page n of the messages matching query, within channelID
// when it is set.
func (s *ArchiveService) Search(ctx context.Context, channelID, query string, page int) (components.MessagePage, error) {
	return s.fetch(ctx, channelID, query, page)
}

// GetThread returns the replies of the thread started at threadTS, oldest
// first.
func (s *ArchiveService) GetThread(ctx context.Context, channelID, threadTS string) (components.MessagePage, error) {
	size := s.Config.Archive.PageSize
	resp, err := s.Client.Messages(ctx, api.MessagesQuery{
		Team:    s.Team().ID,
		Channel: channelID,
		Size:    size,
		Sort:    api.SortAsc,
		Thread:  threadTS,
	})
	if err != nil {
		return components.MessagePage{}, err
	}

	return components.MessagePage{
		ChannelID: channelID,
		Thread:    threadTS,
		Page:      1,
		Size:      size,
		Total:     resp.Total,
		Messages:  s.createMessages(resp, channelID, false),
		Buckets:   resp.Aggs.Buckets,
	}, nil
}

// Latest returns the total number of archived messages in a channel.
func (s *ArchiveService) Latest(ctx context.Context, channelID string) (int64, error) {
	resp, err := s.Client.Messages(ctx, api.MessagesQuery{
		Team:    s.Team().ID,
		Channel: channelID,
		Size:    1,
	})
	if err != nil {
		return 0, err
	}
	return resp.Total, nil
}

func (s *ArchiveService) fetch(ctx context.Context, channelID, query string, page int) (components.MessagePage, error) {
	if page < 1 {
		page = 1
	}
	size := s.Config.Archive.PageSize

	resp, err := s.Client.Messages(ctx, api.MessagesQuery{
		Team:    s.Team().ID,
		Channel: channelID,
		Size:    size,
		Offset:  (page - 1) * size,
		Search:  query,
		Sort:    api.SortDesc,
	})
	if err != nil {
		return components.MessagePage{}, err
	}

	log.Debug().
		Str("channel", channelID).
		Str("query", query).
		Int("page", page).
		Int("messages", len(resp.Messages)).
		Int64("total", resp.Total).
		Msg("service: messages loaded")

	return components.MessagePage{
		ChannelID: channelID,
		Query:     query,
		Page:      page,
		Size:      size,
		Total:     resp.Total,
		Messages:  s.createMessages(resp, channelID, true),
		Buckets:   resp.Aggs.Buckets,
	}, nil
}

// createMessages converts a response page, reversing newest-first results so
// the newest message ends up in the last place.
func (s *ArchiveService) createMessages(resp *api.MessagesPage, channelID string, reverse bool) []components.Message {
	s.rememberUsers(resp.Related.Users)

	msgs := make([]components.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		msgs = append(msgs, s.CreateMessage(m, channelID))
	}

	if reverse {
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}
	return msgs
}

func (s *ArchiveService) rememberUsers(users map[string]api.User) {
	for id, u := range users {
		name := u.DisplayName()
		if name == "" {
			continue
		}

		s.mu.Lock()
		s.userCache[id] = name
		s.mu.Unlock()

		if s.PersistentCache != nil {
			if err := s.PersistentCache.Set(id, name); err != nil {
				log.Warn().Err(err).Str("user", id).Msg("service: failed to cache user")
			}
		}
	}
}

// GetUserName resolves a user id from memory, then the persistent cache,
// and falls back to a placeholder.
func (s *ArchiveService) GetUserName(userID string) string {
	s.mu.Lock()
	name, ok := s.userCache[userID]
	s.mu.Unlock()
	if ok {
		return name
	}

	if s.PersistentCache != nil {
		if name, ok := s.PersistentCache.Get(userID); ok {
			s.mu.Lock()
			s.userCache[userID] = name
			s.mu.Unlock()
			return name
		}
	}

	return fmt.Sprintf("unknown (%s)", userID)
}

// CreateMessage will create a components.Message from an archived slack
// message.
//
// [Jan 2, 2006 23:59] <erroneousboat> Hello world!
func (s *ArchiveService) CreateMessage(message slack.Message, channelID string) components.Message {
	var name string
	switch {
	case message.User != "":
		name = s.GetUserName(message.User)
	case message.Username != "":
		name = message.Username
	case message.BotID != "":
		name = "unknown bot"
	default:
		name = "unknown"
	}

	content, matches := s.parseHighlighted(message.Text)
	msg := components.Message{
		ID:      message.Timestamp,
		Channel: channelID,
		Time:    ParseTimestamp(message.Timestamp),
		Name:    name,
		Content: content,
		Matches: matches,
	}

	if message.Edited != nil {
		msg.Content += " (edited)"
	}

	msg.Messages = append(msg.Messages, s.createMessagesFromAttachments(message.Attachments)...)
	msg.Messages = append(msg.Messages, createMessagesFromFiles(message.Files)...)

	// A message whose thread timestamp equals its own timestamp is the
	// parent of a thread.
	if message.ThreadTimestamp != "" && message.ThreadTimestamp == message.Timestamp {
		msg.Thread = message.ThreadTimestamp
		msg.Replies = message.ReplyCount
	}

	return msg
}

func (s *ArchiveService) createMessagesFromAttachments(atts []slack.Attachment) []components.Message {
	var msgs []components.Message
	for _, att := range atts {
		for _, field := range att.Fields {
			msgs = append(msgs, components.Message{
				Content: fmt.Sprintf("%s %s", field.Title, s.parseMessage(field.Value)),
			})
		}

		for _, text := range []string{att.Pretext, att.Text, att.Title} {
			if text == "" {
				continue
			}
			content, matches := s.parseHighlighted(text)
			msgs = append(msgs, components.Message{Content: content, Matches: matches})
		}
	}
	return msgs
}

func createMessagesFromFiles(files []slack.File) []components.Message {
	var msgs []components.Message
	for _, file := range files {
		msgs = append(msgs, components.Message{
			ID:      file.ID,
			Content: strings.TrimSpace(fmt.Sprintf("%s %s", file.Title, file.URLPrivate)),
		})
	}
	return msgs
}

// parseHighlighted strips the search hit tags from text and returns the
// formatted text together with the distinct highlighted terms.
func (s *ArchiveService) parseHighlighted(text string) (string, []string) {
	var matches []string
	for _, m := range highlightRe.FindAllStringSubmatch(text, -1) {
		term := html.UnescapeString(m[1])
		if term != "" && !slices.Contains(matches, term) {
			matches = append(matches, term)
		}
	}
	return s.parseMessage(highlightRe.ReplaceAllString(text, "$1")), matches
}

// parseMessage will parse a message string and find and replace:
//   - mentions
//   - channel references
//   - links
//   - html entities
func (s *ArchiveService) parseMessage(msg string) string {
	msg = s.parseMentions(msg)
	msg = s.parseChannels(msg)
	msg = parseLinks(msg)
	return html.UnescapeString(msg)
}

// parseMentions replaces mentions with the username and an @ symbol.
//
// Mentions have the following format:
//
//	<@U12345|erroneousboat>
//	<@U12345>
func (s *ArchiveService) parseMentions(msg string) string {
	return mentionRe.ReplaceAllStringFunc(msg, func(str string) string {
		rs := mentionRe.FindStringSubmatch(str)
		if rs[2] != "" {
			return "@" + rs[2]
		}
		return "@" + s.GetUserName(rs[1])
	})
}

// parseChannels replaces <#C123|general> with #general.
func (s *ArchiveService) parseChannels(msg string) string {
	return channelRe.ReplaceAllStringFunc(msg, func(str string) string {
		rs := channelRe.FindStringSubmatch(str)
		if rs[2] != "" {
			return "#" + rs[2]
		}
		if name, ok := s.channelName(rs[1]); ok {
			return "#" + name
		}
		return "#" + rs[1]
	})
}

// parseLinks replaces <url|label> with label and <url> with url.
func parseLinks(msg string) string {
	return linkRe.ReplaceAllStringFunc(msg, func(str string) string {
		rs := linkRe.FindStringSubmatch(str)
		if rs[2] != "" {
			return rs[2]
		}
		return rs[1]
	})
}

// ParseTimestamp converts a Slack timestamp ("1490000000.000100") to a time.
func ParseTimestamp(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*1e9))
}

func createChannelItem(ch api.Channel) components.ChannelItem {
	typ := components.ChannelTypeChannel
	if ch.IsGroup {
		typ = components.ChannelTypeGroup
	}
	return components.ChannelItem{
		ID:       ch.ID,
		Name:     ch.Name,
		Topic:    ch.Purpose.Value,
		Type:     typ,
		Members:  ch.NumMembers,
		Archived: ch.IsArchived,
	}
}
