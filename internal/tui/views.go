package tui

import (
	"fmt"
	"strings"

	"github.com/vlogdeck/vlogdeck/internal/domain"
	"github.com/vlogdeck/vlogdeck/internal/notify"
)

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")

	switch a.view {
	case viewLogin:
		b.WriteString(a.login.view(a.theme))
	case viewVlog:
		b.WriteString(a.renderVlog())
	case viewProfile:
		b.WriteString(a.renderProfile())
	default:
		b.WriteString(a.renderFeed())
	}

	b.WriteString("\n")
	if a.mode != inputNone {
		b.WriteString("\n" + a.input.View() + "\n")
	}
	b.WriteString(a.renderToast())
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a *App) renderHeader() string {
	title := "vlogdeck · feed"
	switch {
	case a.view == viewLogin:
		title = "vlogdeck"
	case a.view == viewVlog:
		title = "vlogdeck · vlog"
	case a.view == viewProfile:
		title = "vlogdeck · profile"
	case a.trending:
		title = "vlogdeck · trending"
	}
	return a.theme.Title.Render(title) + "  " + a.theme.Dim.Render(a.sessionLine())
}

func (a *App) renderFeed() string {
	if a.loading {
		return a.theme.Dim.Render("loading...")
	}
	vlogs := a.visibleVlogs()
	if len(vlogs) == 0 {
		if a.filtered != nil {
			return a.theme.Dim.Render("no matches")
		}
		return a.theme.Dim.Render("nothing here yet")
	}

	var b strings.Builder
	for i, v := range vlogs {
		line := fmt.Sprintf("%-40s  @%-15s %s", truncate(v.Title, 40), truncate(v.Author.Username, 15), vlogStats(v))
		if i == a.cursor {
			b.WriteString(a.theme.SelectedItem.Render(line))
		} else {
			b.WriteString(a.theme.NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	if !a.trending && a.filtered == nil {
		b.WriteString("\n")
		b.WriteString(a.theme.Dim.Render(fmt.Sprintf("page %d of %d vlogs", a.pageNum, a.page.Total)))
	}
	return b.String()
}

func (a *App) renderVlog() string {
	if a.loading {
		return a.theme.Dim.Render("loading...")
	}
	v := a.vlog
	var b strings.Builder

	b.WriteString(a.theme.Title.Render(v.Title))
	b.WriteString("\n")
	b.WriteString(a.theme.Subtitle.Render(fmt.Sprintf("@%s · %d followers", v.Author.Username, v.Author.Followers)))
	b.WriteString("\n\n")
	if v.Description != "" {
		b.WriteString(v.Description)
		b.WriteString("\n\n")
	}
	if len(v.Tags) > 0 {
		b.WriteString(a.theme.Info.Render("#" + strings.Join(v.Tags, " #")))
		b.WriteString("\n\n")
	}
	b.WriteString(a.theme.Subtitle.Render(vlogStats(v)))
	if v.Bookmarked {
		b.WriteString(a.theme.Success.Render("  ★ bookmarked"))
	}
	b.WriteString("\n\n")

	b.WriteString(a.theme.Title.Render(fmt.Sprintf("Comments (%d)", len(v.Comments))))
	b.WriteString("\n")
	if len(v.Comments) == 0 {
		b.WriteString(a.theme.Dim.Render("no comments yet"))
		b.WriteString("\n")
	}
	for _, c := range v.Comments {
		author := "@" + c.Author.Username
		if c.IsTemporary() {
			author += a.theme.Dim.Render(" (sending...)")
		}
		b.WriteString(a.theme.Subtitle.Render(author) + " " + c.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderProfile() string {
	if a.loading {
		return a.theme.Dim.Render("loading...")
	}
	u := a.profile
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("@" + u.Username))
	b.WriteString("  ")
	b.WriteString(a.theme.Subtitle.Render(fmt.Sprintf("%d followers", u.Followers)))
	b.WriteString("\n")
	if u.Bio != "" {
		b.WriteString(u.Bio)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, v := range a.profileVlogs.Vlogs {
		line := fmt.Sprintf("%-40s  %s", truncate(v.Title, 40), vlogStats(v))
		if i == a.cursor {
			b.WriteString(a.theme.SelectedItem.Render(line))
		} else {
			b.WriteString(a.theme.NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	if len(a.profileVlogs.Vlogs) == 0 {
		b.WriteString(a.theme.Dim.Render("no vlogs yet"))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	style := a.theme.Toast.Foreground(a.theme.Accent)
	switch a.toast.Level {
	case notify.LevelSuccess:
		style = a.theme.Toast.Inherit(a.theme.Success)
	case notify.LevelError:
		style = a.theme.Toast.Inherit(a.theme.Error)
	case notify.LevelInfo:
		style = a.theme.Toast.Inherit(a.theme.Info)
	}
	return style.Render(a.toast.Message) + "\n"
}

func (a *App) renderStatusBar() string {
	if a.view == viewLogin {
		return a.theme.Help.Render("esc: back")
	}
	help := "l like · d dislike · b bookmark · f follow · c comment · s share · / search · r refresh · q quit"
	if a.pending {
		help = "working..."
	}
	return a.theme.Help.Render(help)
}

func vlogStats(v domain.Vlog) string {
	return fmt.Sprintf("▲%d ▽%d 💬%d 👁%d", len(v.Likes), len(v.Dislikes), v.CommentCount(), v.Views)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
