package api

import (
	"time"

	"github.com/slack-go/slack"
)

// Team is an archived Slack team.
type Team struct {
	ID         string                 `json:"team_id"`
	Domain     string                 `json:"domain"`
	Name       string                 `json:"name"`
	IsDisabled bool                   `json:"is_disabled"`
	IsHidden   bool                   `json:"is_hidden"`
	Plan       string                 `json:"plan"`
	Icon       map[string]interface{} `json:"icon"`
}

// Channel is a channel the archive bot is a member of.
type Channel struct {
	ID         string `json:"channel_id"`
	Name       string `json:"name"`
	Team       string `json:"team"`
	IsChannel  bool   `json:"is_channel"`
	IsArchived bool   `json:"is_archived"`
	IsGeneral  bool   `json:"is_general"`
	IsGroup    bool   `json:"is_group"`
	IsStarred  bool   `json:"is_starred"`
	IsMember   bool   `json:"is_member"`
	Purpose    struct {
		Value string `json:"value"`
	} `json:"purpose"`
	NumMembers int `json:"num_members"`
}

// User is the public part of an archived user profile.
type User struct {
	ID      string `json:"user_id"`
	Name    string `json:"name"`
	Team    string `json:"team"`
	Deleted bool   `json:"deleted"`
	Color   string `json:"color"`
	Profile struct {
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		RealName      string `json:"real_name"`
		Image24       string `json:"image_24"`
		Image32       string `json:"image_32"`
		Image48       string `json:"image_48"`
		Image72       string `json:"image_72"`
		Image192      string `json:"image_192"`
		ImageOriginal string `json:"image_original"`
		Title         string `json:"title"`
	} `json:"profile"`
}

// DisplayName prefers the real name over the handle.
func (u User) DisplayName() string {
	if u.Profile.RealName != "" {
		return u.Profile.RealName
	}
	return u.Name
}

// ChannelsPage is one page of the channel listing.
type ChannelsPage struct {
	Channels []Channel `json:"channels"`
	Total    int64     `json:"total"`
}

// MessagesPage is one page of message history or search results. Messages
// use the Slack message shape the archive stores.
type MessagesPage struct {
	Messages []slack.Message `json:"messages"`
	Total    int64           `json:"total"`
	Aggs     struct {
		Buckets map[string]int64 `json:"buckets"`
	} `json:"aggs"`
	Related struct {
		Users map[string]User `json:"users"`
	} `json:"related"`
}

// Sort orders message results by timestamp.
type Sort string

const (
	SortDesc Sort = "desc"
	SortAsc  Sort = "asc"
)

// MessagesQuery selects a page of messages.
type MessagesQuery struct {
	Team    string
	Channel string
	Size    int
	Offset  int
	Search  string
	Sort    Sort
	To      time.Time
	Thread  string
}
