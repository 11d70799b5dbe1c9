package main

import (
	"fmt"
	"io"

	"github.com/Cyclone1070/nyx/internal/assistant"
	"github.com/Cyclone1070/nyx/internal/calendar"
	"github.com/Cyclone1070/nyx/internal/dispatch"
	"github.com/Cyclone1070/nyx/internal/session"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deniedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) banner(sessionID string) {
	fmt.Fprintln(p.w, nameStyle.Render("nyx")+" "+mutedStyle.Render("session "+sessionID+", /quit to exit"))
}

func (p *printer) prompt() {
	fmt.Fprint(p.w, promptStyle.Render("> "))
}

func (p *printer) newline() {
	fmt.Fprintln(p.w)
}

func (p *printer) note(msg string) {
	fmt.Fprintln(p.w, mutedStyle.Render(msg))
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintln(p.w, errorStyle.Render("error: "+fmt.Sprintf(format, args...)))
}

func (p *printer) replyStart() {
	fmt.Fprint(p.w, nameStyle.Render("nyx: "))
}

func (p *printer) piece(s string) {
	fmt.Fprint(p.w, s)
}

func (p *printer) reply(r assistant.Reply) {
	if r.Action != nil {
		p.action(r)
		return
	}
	fmt.Fprintln(p.w, nameStyle.Render("nyx: ")+r.Text)
}

// action prints a task result, colored by outcome.
func (p *printer) action(r assistant.Reply) {
	res := r.Action
	var style lipgloss.Style
	switch res.Outcome {
	case dispatch.OutcomeOK:
		style = okStyle
	case dispatch.OutcomeDenied, dispatch.OutcomeNotFound:
		style = deniedStyle
	default:
		style = errorStyle
	}
	fmt.Fprintln(p.w, style.Render("["+string(res.Tag)+" "+string(res.Outcome)+"]"))
	if r.Text != "" {
		fmt.Fprintln(p.w, r.Text)
	}
}

func (p *printer) history(turns []session.Turn) {
	if len(turns) == 0 {
		p.note("no history")
		return
	}
	for _, t := range turns {
		label := "you"
		if t.Role == session.RoleAssistant {
			label = "nyx"
		}
		fmt.Fprintln(p.w, mutedStyle.Render(label+":")+" "+t.Text)
	}
}

func (p *printer) events(events []calendar.Event, days int) {
	if len(events) == 0 {
		p.note(fmt.Sprintf("no events in the next %d days", days))
		return
	}
	for _, ev := range events {
		fmt.Fprintln(p.w, okStyle.Render(ev.When.Local().Format("Mon Jan 2 15:04"))+"  "+ev.Title+"  "+mutedStyle.Render(ev.ID))
	}
}
