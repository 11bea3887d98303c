package dashboard

import (
	"slices"
	"time"
)

// Level of a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a banner that dismisses itself at ExpiresAt
type Notice struct {
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notify raises a banner for the configured TTL
func (d *Dashboard) Notify(level Level, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, Notice{
		Message:   message,
		Level:     level,
		ExpiresAt: d.now().Add(d.noticeTTL),
	})
}

// ActiveNotices returns the banners still visible and forgets expired ones
func (d *Dashboard) ActiveNotices() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.notices = slices.DeleteFunc(d.notices, func(n Notice) bool {
		return !now.Before(n.ExpiresAt)
	})
	return slices.Clone(d.notices)
}
