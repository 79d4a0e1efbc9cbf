package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vlogdeck/vlogdeck/internal/domain"
)

func renderVlogTable(vlogs []domain.Vlog) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Author", "Likes", "Comments", "Views"})

	for _, v := range vlogs {
		tw.AppendRow(table.Row{v.ID, v.Title, "@" + v.Author.Username, len(v.Likes), v.CommentCount(), v.Views})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}

func renderPageFooter(p domain.FeedPage) string {
	if p.Total == 0 {
		return ""
	}
	more := ""
	if p.HasMore {
		more = " (more available)"
	}
	return fmt.Sprintf("page %d · %d total%s", p.Page, p.Total, more)
}
