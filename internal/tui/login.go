package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vlogdeck/vlogdeck/internal/tui/styles"
)

// loginForm is the username/password form shown on the login route. The
// same form doubles as the registration form.
type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
	register bool
	busy     bool
	errText  string
}

func newLoginForm() loginForm {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return loginForm{username: user, password: pass}
}

func (f loginForm) values() (string, string) {
	return strings.TrimSpace(f.username.Value()), f.password.Value()
}

func (f loginForm) ready() bool {
	u, p := f.values()
	return u != "" && p != "" && !f.busy
}

func (f loginForm) cycleFocus() loginForm {
	f.focus = (f.focus + 1) % 2
	if f.focus == 0 {
		f.username.Focus()
		f.password.Blur()
	} else {
		f.username.Blur()
		f.password.Focus()
	}
	return f
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	f.username, cmd = f.username.Update(msg)
	cmds = append(cmds, cmd)
	f.password, cmd = f.password.Update(msg)
	cmds = append(cmds, cmd)
	return f, tea.Batch(cmds...)
}

func (f loginForm) view(theme styles.Theme) string {
	var b strings.Builder

	title := "Log in"
	hint := "ctrl+r: switch to register"
	if f.register {
		title = "Create account"
		hint = "ctrl+r: switch to log in"
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(f.username.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")
	if f.busy {
		b.WriteString(theme.Dim.Render("signing in..."))
	} else if f.errText != "" {
		b.WriteString(theme.Error.Render(f.errText))
	} else {
		b.WriteString(theme.Dim.Render("enter: submit · tab: next field · " + hint))
	}
	return b.String()
}
