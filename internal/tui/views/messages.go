package views

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tripmate/internal/engagement"
	"tripmate/pkg/utils"
)

// Owner names the screen a completion belongs to
type Owner int

const (
	OwnerFeed Owner = iota
	OwnerDetail
)

func (o Owner) String() string {
	if o == OwnerDetail {
		return "detail"
	}
	return "feed"
}

// SettledMsg carries a finished remote call back to the event loop. The
// root model settles it and forwards the result to the owning screen.
type SettledMsg struct {
	Owner      Owner
	Completion engagement.Completion
}

// ResultMsg is the settled outcome handed to a screen
type ResultMsg struct {
	Result engagement.Result
}

// OpenDetailMsg is sent when a recommendation is selected in the list
type OpenDetailMsg struct {
	Recommendation engagement.Recommendation
}

// BackMsg leaves the detail screen. Counters it changed are already in the
// shared cache.
type BackMsg struct{}

// NoticeExpireMsg asks the current screen to drop an old notice
type NoticeExpireMsg struct {
	At time.Time
}

// run executes task off the event loop
func run(owner Owner, task engagement.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := utils.WithTimeout(context.Background())
		defer cancel()
		return SettledMsg{Owner: owner, Completion: task(ctx)}
	}
}

func expireNotice(ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(t time.Time) tea.Msg {
		return NoticeExpireMsg{At: t}
	})
}
