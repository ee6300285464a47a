package tui

import "github.com/mmcdole/lectern/internal/domain"

// ChannelObserver adapts domain.PopulateObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.PopulateProgress
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.PopulateProgress) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnProgress sends progress to the channel (non-blocking if full).
// It runs inside the population cycle, so it must never wait on the UI.
func (o *ChannelObserver) OnProgress(progress domain.PopulateProgress) {
	select {
	case o.ch <- progress:
	default: // Non-blocking if channel full
	}
}
