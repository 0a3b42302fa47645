package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Source reports how many messages a channel holds.
type Source interface {
	Latest(ctx context.Context, channelID string) (int64, error)
}

// Poller watches one channel and publishes NewMessages when its total grows.
type Poller struct {
	source   Source
	bus      *Bus
	interval time.Duration

	mu        sync.Mutex
	channelID string
	total     int64
}

func NewPoller(source Source, bus *Bus, interval time.Duration) *Poller {
	return &Poller{source: source, bus: bus, interval: interval}
}

// Watch switches the poller to channelID. total is the count the UI has
// already shown.
func (p *Poller) Watch(channelID string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
	p.total = total
}

// Poll checks the watched channel once.
func (p *Poller) Poll(ctx context.Context) {
	p.mu.Lock()
	channelID, seen := p.channelID, p.total
	p.mu.Unlock()

	if channelID == "" {
		return
	}

	total, err := p.source.Latest(ctx, channelID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("channel", channelID).Msg("events: refresh failed")
		p.bus.Publish(Event{Type: RefreshFailed, ChannelID: channelID, Err: err})
		return
	}

	p.mu.Lock()
	if p.channelID != channelID || total <= p.total {
		p.mu.Unlock()
		return
	}
	p.total = total
	p.mu.Unlock()

	log.Debug().Str("channel", channelID).Int64("new", total-seen).Msg("events: new messages")
	p.bus.Publish(Event{Type: NewMessages, ChannelID: channelID, Count: total - seen})
}

// Run polls every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}
