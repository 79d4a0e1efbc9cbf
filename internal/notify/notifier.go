// Package notify carries user-visible notifications from the mutation
// engine to whatever surface is listening: the TUI toast bar, the CLI, or
// just the log.
package notify

import (
	"log/slog"
	"time"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// String returns a short identifier for logging.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one user-visible message.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// LogNotifier writes notifications to the structured log. Used as the
// fallback when no interactive surface is attached.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ domain.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Info(msg string)    { n.log(LevelInfo, msg) }
func (n *LogNotifier) Success(msg string) { n.log(LevelSuccess, msg) }
func (n *LogNotifier) Error(msg string)   { n.log(LevelError, msg) }

func (n *LogNotifier) log(level Level, msg string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "level", level.String(), "message", msg)
}

// ChannelNotifier delivers notifications over a channel for the TUI toast
// bar. Delivery never blocks; if the listener has fallen behind, the
// notification is dropped rather than stalling a mutation.
type ChannelNotifier struct {
	ch chan Notification
}

var _ domain.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a notifier with a small delivery buffer.
func NewChannelNotifier() *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan Notification, 16)}
}

// C is the delivery channel the view layer listens on.
func (n *ChannelNotifier) C() <-chan Notification {
	return n.ch
}

func (n *ChannelNotifier) Info(msg string)    { n.send(LevelInfo, msg) }
func (n *ChannelNotifier) Success(msg string) { n.send(LevelSuccess, msg) }
func (n *ChannelNotifier) Error(msg string)   { n.send(LevelError, msg) }

func (n *ChannelNotifier) send(level Level, msg string) {
	select {
	case n.ch <- Notification{Level: level, Message: msg, At: time.Now()}:
	default:
	}
}
