package views

import "github.com/charmbracelet/bubbles/key"

var (
	keyUp      = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown    = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyEnter   = key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open"))
	keyBack    = key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back"))
	keyLike    = key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like"))
	keyMore    = key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "more"))
	keyRefresh = key.NewBinding(key.WithKeys("R", "ctrl+r"), key.WithHelp("R", "refresh"))
	keyFilter  = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter"))
	keyCompose = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "review"))
	keyReply   = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply"))
	keyEdit    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	keyDelete  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete"))
	keyReport  = key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "report"))

	keySubmit = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	keyCancel = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
