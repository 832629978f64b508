package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yukikurage/taskpad/internal/services"
)

// ChannelNotifier hands notifications to the running program, which shows
// them in the banner line. Notifications are dropped while the buffer is full.
type ChannelNotifier struct {
	ch chan services.Notification
}

func NewChannelNotifier(buffer int) *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan services.Notification, buffer)}
}

func (n *ChannelNotifier) RequestPermission(ctx context.Context) bool { return true }

func (n *ChannelNotifier) Notify(ctx context.Context, notification services.Notification) error {
	select {
	case n.ch <- notification:
	default:
	}
	return nil
}

type notificationMsg services.Notification

func (n *ChannelNotifier) wait() tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		return notificationMsg(<-n.ch)
	}
}
