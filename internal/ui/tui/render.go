package tui

import (
	"fmt"
	"strings"

	"academy/internal/app/resource"
	"academy/internal/domain/chat"
	"academy/internal/domain/injury"
	"academy/internal/domain/roster"
	"academy/internal/domain/stadium"
	"academy/internal/domain/tournament"
	"academy/internal/domain/wire"
)

// renderResource draws a screen purely from its resource: a spinner while
// idle or loading, the body on success, the error and a retry hint otherwise.
func renderResource[T any](th theme, r resource.Resource[T], spin string, body func(T) string) string {
	switch r.State() {
	case resource.StateSuccess:
		value, _ := r.Value()
		return body(value)
	case resource.StateError:
		return th.errorText.Render("Error: "+r.Message()) + "\n" + th.muted.Render("press r to retry")
	default:
		return spin + " loading..."
	}
}

func renderList(th theme, lines []string, cursor int, empty string) string {
	if len(lines) == 0 {
		return th.muted.Render(empty)
	}
	var b strings.Builder
	for i, line := range lines {
		if i == cursor {
			b.WriteString(th.selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func conversationLine(c chat.Conversation) string {
	line := c.DisplayName()
	if c.LastMessage != nil {
		line += ": " + truncate(c.LastMessage.Text, 48)
	}
	if c.UnreadCount > 0 {
		line += fmt.Sprintf(" (%d)", c.UnreadCount)
	}
	return line
}

func messageLine(th theme, local wire.Identifier, m chat.Message) string {
	stamp := shortTime(m.CreatedAt)
	if m.SenderID == local {
		suffix := ""
		if m.IsLocal() {
			suffix = " …"
		}
		return th.mine.Render(fmt.Sprintf("[%s] me: %s%s", stamp, m.Text, suffix))
	}
	return th.theirs.Render(fmt.Sprintf("[%s] %s", stamp, m.Text))
}

func injuryLine(i injury.Injury) string {
	name := i.PlayerName
	if name == "" {
		name = i.PlayerID.String()
	}
	line := fmt.Sprintf("%s: %s [%s]", name, i.Type, i.Status)
	if i.Severity != "" {
		line += " " + i.Severity
	}
	if i.ExpectedReturn != "" && i.IsOpen() {
		line += ", back " + shortDate(i.ExpectedReturn)
	}
	return line
}

func playerLine(p roster.Player) string {
	number := "--"
	if p.Number > 0 {
		number = fmt.Sprintf("%2d", p.Number)
	}
	line := number + " " + p.Name
	if p.Position != "" {
		line += " (" + p.Position + ")"
	}
	return line
}

func stadiumLine(s stadium.Stadium) string {
	line := s.Name
	if s.City != "" {
		line += ", " + s.City
	}
	if s.Capacity > 0 {
		line += fmt.Sprintf(" · %d seats", s.Capacity)
	}
	if s.Location.Valid {
		line += fmt.Sprintf(" · %.4f,%.4f", s.Location.Latitude, s.Location.Longitude)
	}
	return line
}

func tournamentLines(t tournament.Tournament) []string {
	out := []string{fmt.Sprintf("%s (%s to %s)", t.Name, shortDate(t.StartDate), shortDate(t.EndDate))}
	for _, m := range t.Matches {
		line := fmt.Sprintf("  %s %s vs %s", shortDate(m.Kickoff), m.Home.Label(), m.Away.Label())
		if m.Score != nil {
			line += fmt.Sprintf(" %d-%d", m.Score.Home, m.Score.Away)
		} else if m.Status != "" {
			line += " [" + m.Status + "]"
		}
		out = append(out, line)
	}
	return out
}

func shortTime(canonical string) string {
	t, err := wire.ParseTime(canonical)
	if err != nil {
		return canonical
	}
	return t.Local().Format("Jan 2 15:04")
}

func shortDate(canonical string) string {
	if canonical == "" {
		return "?"
	}
	t, err := wire.ParseTime(canonical)
	if err != nil {
		return canonical
	}
	return t.Format("Jan 2")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
