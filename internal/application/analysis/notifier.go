package analysis

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationLevel is the severity of a notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelWarning NotificationLevel = "warning"
	LevelInfo    NotificationLevel = "info"
)

// DefaultNotificationDuration is how long a notification stays listed.
const DefaultNotificationDuration = 4 * time.Second

// Notification is a transient message for the user of a workspace.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Notifier receives user-facing messages. It is passed explicitly to
// whatever raises them.
type Notifier interface {
	Notify(workspace string, level NotificationLevel, message string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(string, NotificationLevel, string) {}

// MemoryNotifier keeps the most recent notifications of each workspace.
type MemoryNotifier struct {
	mu       sync.Mutex
	limit    int
	duration time.Duration
	now      func() time.Time
	items    map[string][]Notification
}

// NewMemoryNotifier keeps at most limit notifications per workspace; older
// ones are dropped first. A non-positive limit keeps 50.
func NewMemoryNotifier(limit int) *MemoryNotifier {
	if limit <= 0 {
		limit = 50
	}
	return &MemoryNotifier{
		limit:    limit,
		duration: DefaultNotificationDuration,
		now:      time.Now,
		items:    make(map[string][]Notification),
	}
}

func (n *MemoryNotifier) Notify(workspace string, level NotificationLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	list := append(n.items[workspace], Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.duration),
	})
	if over := len(list) - n.limit; over > 0 {
		list = append([]Notification(nil), list[over:]...)
	}
	n.items[workspace] = list
}

// List returns the unexpired notifications of a workspace, oldest first, and
// forgets the expired ones.
func (n *MemoryNotifier) List(workspace string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	live := make([]Notification, 0, len(n.items[workspace]))
	for _, item := range n.items[workspace] {
		if now.Before(item.ExpiresAt) {
			live = append(live, item)
		}
	}
	if len(live) == 0 {
		delete(n.items, workspace)
	} else {
		n.items[workspace] = live
	}
	out := make([]Notification, len(live))
	copy(out, live)
	return out
}

// Dismiss removes one notification.
func (n *MemoryNotifier) Dismiss(workspace, id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	list := n.items[workspace]
	for i, item := range list {
		if item.ID == id {
			n.items[workspace] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Clear forgets every notification of a workspace.
func (n *MemoryNotifier) Clear(workspace string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.items, workspace)
}
