package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tripmate/internal/engagement"
	"tripmate/internal/tui/components"
	"tripmate/internal/tui/styles"
	"tripmate/pkg/utils"
)

// FeedModel lists recommendations
type FeedModel struct {
	feed *engagement.Feed

	cursor    int
	filter    textinput.Model
	filtering bool

	notice  components.Notice
	spinner components.Spinner
	now     func() time.Time

	width  int
	height int
}

// NewFeedModel creates the list screen over feed
func NewFeedModel(feed *engagement.Feed) FeedModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or place..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(feed.Filter())

	return FeedModel{
		feed:    feed,
		filter:  ti,
		spinner: components.NewSpinner("Loading recommendations..."),
		now:     time.Now,
	}
}

// Init requests the first page
func (m FeedModel) Init() tea.Cmd {
	return tea.Batch(run(OwnerFeed, m.feed.LoadNext()), m.spinner.Tick)
}

// Resume restarts the spinner after another screen had the loop
func (m FeedModel) Resume() tea.Cmd {
	return m.spinner.Tick
}

// InputActive reports whether keys go to the filter box
func (m FeedModel) InputActive() bool {
	return m.filtering
}

func (m FeedModel) selected() (engagement.Recommendation, bool) {
	items := m.feed.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return engagement.Recommendation{}, false
	}
	return items[m.cursor], true
}

func (m *FeedModel) fail(err error) tea.Cmd {
	m.notice.SetError(err, m.now())
	return expireNotice(components.NoticeTTL)
}

// Update handles messages
func (m FeedModel) Update(msg tea.Msg) (FeedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)

	case ResultMsg:
		m.notice.FromResult(msg.Result, m.now())
		if m.cursor >= m.feed.Len() {
			m.cursor = max(m.feed.Len()-1, 0)
		}
		if m.notice.Visible() {
			return m, expireNotice(components.NoticeTTL)
		}
		return m, nil

	case NoticeExpireMsg:
		m.notice.Expire(msg.At)
		return m, nil
	}

	cmd := m.spinner.Update(msg)
	return m, cmd
}

func (m FeedModel) updateFilter(msg tea.KeyMsg) (FeedModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCancel):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue(m.feed.Filter())
		return m, nil

	case key.Matches(msg, keySubmit):
		m.filtering = false
		m.filter.Blur()
		m.cursor = 0
		query := utils.SanitizeContent(m.filter.Value())
		return m, run(OwnerFeed, m.feed.SetFilter(query))
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m FeedModel) updateList(msg tea.KeyMsg) (FeedModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keyBack):
		m.notice.Clear()
		return m, nil

	case key.Matches(msg, keyFilter):
		m.filtering = true
		return m, m.filter.Focus()

	case key.Matches(msg, keyDown):
		if m.cursor < m.feed.Len()-1 {
			m.cursor++
		}
		// Reaching the bottom pulls the next page.
		if m.cursor >= m.feed.Len()-1 {
			return m, run(OwnerFeed, m.feed.LoadNext())
		}
		return m, nil

	case key.Matches(msg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keyMore):
		return m, run(OwnerFeed, m.feed.LoadNext())

	case key.Matches(msg, keyRefresh):
		m.cursor = 0
		return m, run(OwnerFeed, m.feed.Refresh())

	case key.Matches(msg, keyLike):
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		task, err := m.feed.ToggleLike(rec.ID)
		if err != nil {
			return m, m.fail(err)
		}
		return m, run(OwnerFeed, task)

	case key.Matches(msg, keyEnter):
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return OpenDetailMsg{Recommendation: rec} }
	}

	return m, nil
}

// View renders the list
func (m FeedModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("✈ Recommendations"))
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(styles.InputFocusedStyle.Render(m.filter.View()))
		b.WriteString("\n")
	} else if f := m.feed.Filter(); f != "" {
		b.WriteString(styles.SubtitleStyle.Render("Filter: " + f))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	items := m.feed.Items()
	if len(items) == 0 && !m.feed.Loading() {
		b.WriteString(styles.HelpStyle.Render("No recommendations yet."))
		b.WriteString("\n")
	}

	for i, rec := range items {
		title := styles.ListItemTitleStyle.Render(styles.Truncate(rec.Title, 50))
		meta := fmt.Sprintf("%s • by %s • %s  %s  💬 %d  👁 %d",
			rec.Location,
			rec.AuthorName,
			utils.TimeAgo(rec.CreatedAt),
			styles.RenderLike(rec.Liked, rec.Aggregate.LikesCount),
			rec.Aggregate.ReviewsCount,
			rec.Aggregate.ViewsCount,
		)
		line := title + "\n" + styles.ListItemDescStyle.Render(meta)

		if i == m.cursor {
			b.WriteString(styles.ListItemSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(styles.ListItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	switch {
	case m.feed.Loading():
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	case !m.feed.Exhausted() && len(items) > 0:
		b.WriteString(styles.HelpStyle.Render("  n: load more"))
		b.WriteString("\n")
	}

	if m.notice.Visible() {
		b.WriteString("\n")
		b.WriteString(m.notice.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(helpLine(keyUp, keyDown, keyEnter, keyLike, keyFilter, keyMore, keyRefresh)))

	return b.String()
}
