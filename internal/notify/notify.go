// Package notify delivers user-visible notifications from the console
// screens and logs each one.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/simp-lee/koiconsult/internal/client"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Notification is one message shown to the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Message maps an error to the text the user sees.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ce *client.Error
	if errors.As(err, &ce) {
		return ce.UserMessage()
	}
	return client.MessageGeneric
}

// Error notifies err at error level, warning level for precondition
// failures. A nil err is ignored.
func Error(n Notifier, err error) {
	if n == nil || err == nil {
		return
	}
	level := LevelError
	if client.IsPrecondition(err) {
		level = LevelWarning
	}
	n.Notify(Notification{Level: level, Message: Message(err)})
}

// Success notifies a completed action.
func Success(n Notifier, msg string) {
	if n != nil {
		n.Notify(Notification{Level: LevelSuccess, Message: msg})
	}
}

// Warn notifies a recoverable condition.
func Warn(n Notifier, msg string) {
	if n != nil {
		n.Notify(Notification{Level: LevelWarning, Message: msg})
	}
}

// Logger logs every notification and optionally echoes it to a writer.
type Logger struct {
	logger *slog.Logger
	mu     sync.Mutex
	out    io.Writer
}

// NewLogger returns a notifier backed by logger. out may be nil.
func NewLogger(logger *slog.Logger, out io.Writer) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, out: out}
}

func (l *Logger) Notify(n Notification) {
	l.logger.Log(context.Background(), n.Level.slogLevel(), "notification",
		slog.String("level", n.Level.String()),
		slog.String("message", n.Message),
	)
	if l.out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s\n", n.Level, n.Message)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
