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
	"tripmate/pkg/models"
	"tripmate/pkg/utils"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputCompose
	inputEdit
	inputReport
)

// DetailModel shows one recommendation and its review thread
type DetailModel struct {
	detail *engagement.Detail
	user   engagement.User

	cursor int
	input  textinput.Model
	mode   inputMode
	// target is the parent while composing (zero for a new review) and the
	// comment itself while editing or reporting.
	target engagement.ID

	notice  components.Notice
	spinner components.Spinner
	now     func() time.Time

	width  int
	height int
}

// NewDetailModel creates the thread screen over detail
func NewDetailModel(detail *engagement.Detail, user engagement.User) DetailModel {
	ti := textinput.New()
	ti.CharLimit = models.MaxCommentLength
	ti.Width = 60

	return DetailModel{
		detail:  detail,
		user:    user,
		input:   ti,
		spinner: components.NewSpinner("Loading reviews..."),
		now:     time.Now,
	}
}

// Init requests the first page of reviews
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(run(OwnerDetail, m.detail.Tree.LoadRoots()), m.spinner.Tick)
}

// InputActive reports whether keys go to the text box
func (m DetailModel) InputActive() bool {
	return m.mode != inputNone
}

// Recommendation returns the entity with its current counters
func (m DetailModel) Recommendation() engagement.Recommendation {
	return m.detail.Recommendation()
}

// Close detaches the screen; results still in flight are dropped
func (m DetailModel) Close() {
	m.detail.Close()
}

func (m DetailModel) selected() (engagement.Row, bool) {
	rows := m.detail.Tree.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return engagement.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *DetailModel) selectedComment() (engagement.Comment, bool) {
	row, ok := m.selected()
	if !ok || row.Kind != engagement.RowComment {
		return engagement.Comment{}, false
	}
	return row.Comment, true
}

func (m *DetailModel) fail(err error) tea.Cmd {
	m.notice.SetError(err, m.now())
	return expireNotice(components.NoticeTTL)
}

func (m *DetailModel) clampCursor() {
	n := len(m.detail.Tree.Rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateThread(msg)

	case ResultMsg:
		m.notice.FromResult(msg.Result, m.now())
		m.clampCursor()
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

func (m DetailModel) startInput(mode inputMode, target engagement.ID, value, placeholder string) (DetailModel, tea.Cmd) {
	m.mode = mode
	m.target = target
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *DetailModel) stopInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m DetailModel) updateInput(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCancel):
		// Drafts survive cancel; only edits and reports are discarded.
		m.stopInput()
		return m, nil

	case key.Matches(msg, keySubmit):
		var (
			task engagement.Task
			err  error
		)
		switch m.mode {
		case inputCompose:
			task, err = m.detail.Submit(m.target)
		case inputEdit:
			task, err = m.detail.Tree.EditComment(m.target, m.input.Value())
		case inputReport:
			task, err = m.detail.Tree.ReportComment(m.target, m.input.Value(), "")
		}
		if err != nil {
			return m, m.fail(err)
		}
		m.stopInput()
		m.clampCursor()
		return m, run(OwnerDetail, task)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputCompose {
		m.detail.Drafts.Set(m.target, m.input.Value())
	}
	return m, cmd
}

func (m DetailModel) updateThread(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	tree := m.detail.Tree

	switch {
	case key.Matches(msg, keyBack):
		if m.notice.Visible() {
			m.notice.Clear()
			return m, nil
		}
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, keyDown):
		if m.cursor < len(tree.Rows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keyEnter):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		var (
			task engagement.Task
			err  error
		)
		switch row.Kind {
		case engagement.RowComment:
			task, err = tree.ToggleExpand(row.Comment.ID)
		case engagement.RowMore:
			if row.ParentID.IsZero() {
				task = tree.LoadRoots()
			} else {
				task, err = tree.LoadMoreReplies(row.ParentID)
			}
		}
		if err != nil {
			return m, m.fail(err)
		}
		m.clampCursor()
		return m, run(OwnerDetail, task)

	case key.Matches(msg, keyMore):
		return m, run(OwnerDetail, tree.LoadRoots())

	case key.Matches(msg, keyRefresh):
		m.cursor = 0
		return m, run(OwnerDetail, tree.Refresh())

	case key.Matches(msg, keyLike):
		task, err := m.detail.ToggleLike()
		if err != nil {
			return m, m.fail(err)
		}
		return m, run(OwnerDetail, task)

	case key.Matches(msg, keyCompose):
		return m.startInput(inputCompose, engagement.ID{}, m.detail.Drafts.Get(engagement.ID{}), "Write a review...")

	case key.Matches(msg, keyReply):
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		if !c.Depth.CanReply() {
			return m, m.fail(engagement.ErrDepthExceeded)
		}
		return m.startInput(inputCompose, c.ID, m.detail.Drafts.Get(c.ID), "Reply to "+c.AuthorName+"...")

	case key.Matches(msg, keyEdit):
		c, ok := m.selectedComment()
		if !ok || c.AuthorID != m.user.ID {
			return m, nil
		}
		return m.startInput(inputEdit, c.ID, c.Content, "Edit your comment...")

	case key.Matches(msg, keyDelete):
		c, ok := m.selectedComment()
		if !ok || c.AuthorID != m.user.ID {
			return m, nil
		}
		task, err := tree.DeleteComment(c.ID)
		if err != nil {
			return m, m.fail(err)
		}
		return m, run(OwnerDetail, task)

	case key.Matches(msg, keyReport):
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		return m.startInput(inputReport, c.ID, "", "Why should this be reviewed?")
	}

	return m, nil
}

// View renders the recommendation and its thread
func (m DetailModel) View() string {
	var b strings.Builder
	rec := m.detail.Recommendation()

	b.WriteString(styles.TitleStyle.Render(rec.Title))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("Location", rec.Location))
	b.WriteString("\n")
	b.WriteString(styles.RenderKeyValue("By", rec.AuthorName+" • "+postedAt(rec.CreatedAt)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  💬 %d reviews  👁 %d views",
		styles.RenderLike(rec.Liked, rec.Aggregate.LikesCount),
		rec.Aggregate.ReviewsCount,
		rec.Aggregate.ViewsCount,
	))
	b.WriteString("\n")
	b.WriteString(styles.RenderDivider(m.width - 4))
	b.WriteString("\n")

	rows := m.detail.Tree.Rows()
	if len(rows) == 0 {
		b.WriteString(styles.HelpStyle.Render("No reviews yet. Press c to write the first one."))
		b.WriteString("\n")
	}
	for i, row := range rows {
		line := m.renderRow(row)
		if i == m.cursor {
			b.WriteString(styles.ListItemSelectedStyle.Render(line))
		} else {
			b.WriteString(styles.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.mode != inputNone {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render(m.inputTitle()))
		b.WriteString("\n")
		b.WriteString(styles.InputFocusedStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	if m.notice.Visible() {
		b.WriteString("\n")
		b.WriteString(m.notice.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode != inputNone {
		b.WriteString(styles.HelpStyle.Render(helpLine(keySubmit, keyCancel)))
	} else {
		b.WriteString(styles.HelpStyle.Render(helpLine(keyEnter, keyCompose, keyReply, keyEdit, keyDelete, keyReport, keyLike, keyRefresh, keyBack)))
	}

	return b.String()
}

func (m DetailModel) inputTitle() string {
	switch m.mode {
	case inputEdit:
		return "Edit"
	case inputReport:
		return "Report"
	}
	if m.target.IsZero() {
		return "New review"
	}
	return "Reply"
}

// postedAt shows the absolute time with the relative one after it
func postedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatTimestamp(t) + " (" + utils.TimeAgo(t) + ")"
}

func (m DetailModel) renderRow(row engagement.Row) string {
	indent := styles.Indent(int(row.Depth))

	switch row.Kind {
	case engagement.RowLoading:
		return indent + m.spinner.View()
	case engagement.RowMore:
		return indent + styles.HelpStyle.Render("… load more")
	}

	c := row.Comment
	header := styles.AuthorStyle.Render(c.AuthorName) + " " + styles.HelpStyle.Render(utils.TimeAgo(c.CreatedAt))
	if c.Pending() {
		header += " " + styles.PendingStyle.Render("sending…")
	}

	var body string
	switch c.Status {
	case engagement.StatusDeleted:
		body = styles.DeletedStyle.Render("This comment was deleted.")
	case engagement.StatusBlocked:
		body = styles.DeletedStyle.Render("This comment was hidden by moderators.")
	default:
		body = styles.ContentStyle.Render(c.Content)
	}

	out := indent + header + "\n" + indent + body
	if c.ReplyCount > 0 && c.Depth.CanReply() {
		marker := "▸"
		if row.Expanded {
			marker = "▾"
		}
		out += "\n" + indent + styles.HelpStyle.Render(fmt.Sprintf("%s %d replies", marker, c.ReplyCount))
	}
	return out
}
