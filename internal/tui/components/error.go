package components

import (
	"time"

	"tripmate/internal/engagement"
	"tripmate/internal/tui/styles"
)

// NoticeTTL is how long a notice stays up unless dismissed
const NoticeTTL = 5 * time.Second

// Notice shows the outcome of the last failed operation until dismissed
type Notice struct {
	message string
	detail  string
	shownAt time.Time
}

// FromResult turns a settled result into a notice. Successes and stale
// results clear it.
func (n *Notice) FromResult(res engagement.Result, now time.Time) {
	if res.Stale {
		return
	}
	if res.Succeeded || res.Message == "" {
		n.Clear()
		return
	}
	n.message = res.Message
	n.detail = ""
	if res.Err != nil {
		n.detail = res.Err.Error()
	}
	n.shownAt = now
}

// SetError shows a validation error that never reached the network
func (n *Notice) SetError(err error, now time.Time) {
	if err == nil {
		return
	}
	n.message = err.Error()
	n.detail = ""
	n.shownAt = now
}

// Clear dismisses the notice
func (n *Notice) Clear() {
	n.message = ""
	n.detail = ""
}

// Expire dismisses the notice once it has been shown for NoticeTTL
func (n *Notice) Expire(now time.Time) {
	if n.message != "" && now.Sub(n.shownAt) >= NoticeTTL {
		n.Clear()
	}
}

// Visible returns whether a notice is shown
func (n Notice) Visible() bool {
	return n.message != ""
}

func (n Notice) Message() string {
	return n.message
}

// View renders the notice
func (n Notice) View() string {
	if !n.Visible() {
		return ""
	}
	out := styles.ErrorStyle.Render("⚠ " + n.message)
	if n.detail != "" {
		out += "  " + styles.HelpStyle.Render(styles.Truncate(n.detail, 60))
	}
	return out + "  " + styles.HelpStyle.Render("(esc to dismiss)")
}
