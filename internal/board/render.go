package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/imrishuroy/dispatch-board/internal/dispatch"
)

var listTitles = []struct {
	title string
	items func(dispatch.Record) []string
}{
	{"Emergency Highlights", func(r dispatch.Record) []string { return r.Highlights }},
	{"Recommended Actions", func(r dispatch.Record) []string { return r.Recommendations }},
	{"Suggested Medications", func(r dispatch.Record) []string { return r.Medications }},
}

// RenderCard writes a one-line summary of c, followed by the full profile
// and non-empty lists when detailed is set.
func RenderCard(w io.Writer, pos int, c Card, detailed bool) error {
	p := c.Record.Profile
	if _, err := fmt.Fprintf(w, "%2d. [%-10s] %s (%s years old) | %s | %s | id=%s\n",
		pos, c.Urgency.Label(), p.Field(dispatch.ProfileName), p.Field(dispatch.ProfileAge),
		p.Field(dispatch.ProfileLocation), c.Record.Action, c.Record.ID); err != nil {
		return err
	}
	if !detailed {
		return nil
	}

	var sb strings.Builder
	if len(p) == 0 {
		sb.WriteString("    No profile data.\n")
	} else {
		sb.WriteString("    Patient Profile\n")
		for _, k := range dispatch.ProfileKeys {
			fmt.Fprintf(&sb, "      %s: %s\n", k, p.Field(k))
		}
	}
	for _, l := range listTitles {
		items := l.items(c.Record)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    %s\n", l.title)
		for _, it := range items {
			fmt.Fprintf(&sb, "      - %s\n", it)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Render writes every visible card in display order.
func (b *Board) Render(w io.Writer, detailed bool) error {
	cards := b.Visible()
	if len(cards) == 0 {
		_, err := io.WriteString(w, "No active dispatches.\n")
		return err
	}
	for i, c := range cards {
		if err := RenderCard(w, i, c, detailed); err != nil {
			return err
		}
	}
	return nil
}
