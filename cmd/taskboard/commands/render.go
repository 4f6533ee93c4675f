package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

func validFormat(format string) bool {
	switch format {
	case formatText, formatYAML, formatJSON:
		return true
	default:
		return false
	}
}

// palette holds the colors of one theme mode.
type palette struct {
	Heading lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	Done    lipgloss.Color
	Info    lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}

var palettes = map[entities.ThemeMode]palette{
	entities.ThemeLight: {
		Heading: lipgloss.Color("18"),
		Text:    lipgloss.Color("235"),
		Muted:   lipgloss.Color("244"),
		Accent:  lipgloss.Color("25"),
		Done:    lipgloss.Color("28"),
		Info:    lipgloss.Color("25"),
		Success: lipgloss.Color("28"),
		Error:   lipgloss.Color("160"),
	},
	entities.ThemeDark: {
		Heading: lipgloss.Color("153"),
		Text:    lipgloss.Color("252"),
		Muted:   lipgloss.Color("243"),
		Accent:  lipgloss.Color("81"),
		Done:    lipgloss.Color("114"),
		Info:    lipgloss.Color("81"),
		Success: lipgloss.Color("114"),
		Error:   lipgloss.Color("203"),
	},
}

// Renderer writes command results as styled text, YAML or JSON.
type Renderer struct {
	out    io.Writer
	format string
	theme  palette
	lg     *lipgloss.Renderer
}

func NewRenderer(out io.Writer, format string, mode entities.ThemeMode) *Renderer {
	theme, ok := palettes[mode]
	if !ok {
		theme = palettes[entities.ThemeLight]
	}
	return &Renderer{
		out:    out,
		format: format,
		theme:  theme,
		lg:     lipgloss.NewRenderer(out),
	}
}

// Views are the serialized shapes of the state.

type BoardView struct {
	ID     int    `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Owner  string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Shared bool   `json:"shared" yaml:"shared"`
	Active bool   `json:"active" yaml:"active"`

	display string
}

type TaskView struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Mode        string     `json:"mode" yaml:"mode"`
	Deadline    *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	EventStart  *time.Time `json:"eventStart,omitempty" yaml:"eventStart,omitempty"`
	EventEnd    *time.Time `json:"eventEnd,omitempty" yaml:"eventEnd,omitempty"`
}

type CardView struct {
	ID    int        `json:"id" yaml:"id"`
	Title string     `json:"title" yaml:"title"`
	Tasks []TaskView `json:"tasks" yaml:"tasks"`
}

type StateView struct {
	LoggedIn    bool        `json:"loggedIn" yaml:"loggedIn"`
	Theme       string      `json:"theme" yaml:"theme"`
	ActiveBoard *int        `json:"activeBoard" yaml:"activeBoard"`
	IsShared    bool        `json:"isShared" yaml:"isShared"`
	Boards      []BoardView `json:"boards" yaml:"boards"`
	Cards       []CardView  `json:"cards" yaml:"cards"`
}

// NewStateView flattens s for output. Own boards come before shared ones.
func NewStateView(s state.State) StateView {
	view := StateView{
		LoggedIn: s.IsLoggedIn,
		Theme:    string(s.ThemeMode),
		IsShared: s.IsShared,
		Boards:   []BoardView{},
		Cards:    []CardView{},
	}
	if id, ok := s.ActiveTaskboard.ID(); ok {
		view.ActiveBoard = &id
	}

	for _, b := range s.Taskboards.UserTaskboards {
		view.Boards = append(view.Boards, BoardView{
			ID:      b.ID,
			Title:   b.BoardTitle,
			Active:  s.ActiveTaskboard.Is(b.ID),
			display: b.DisplayTitle(false),
		})
	}
	for _, b := range s.Taskboards.SharedTaskboards {
		view.Boards = append(view.Boards, BoardView{
			ID:      b.ID,
			Title:   b.BoardTitle,
			Owner:   b.OwnerUsername(),
			Shared:  true,
			Active:  s.ActiveTaskboard.Is(b.ID),
			display: b.DisplayTitle(true),
		})
	}

	for _, c := range s.CurrentTaskcards {
		card := CardView{ID: c.ID, Title: c.CardTitle, Tasks: []TaskView{}}
		for _, t := range s.TasksFor(c.ID) {
			card.Tasks = append(card.Tasks, TaskView{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.DescriptionText(),
				Completed:   t.Completed,
				Mode:        string(t.Mode()),
				Deadline:    t.DeadlineDate,
				EventStart:  t.EventStartDate,
				EventEnd:    t.EventEndDate,
			})
		}
		view.Cards = append(view.Cards, card)
	}
	return view
}

// State writes the boards and the active board's cards.
func (r *Renderer) State(s state.State) error {
	view := NewStateView(s)
	if r.format != formatText {
		return r.encode(view)
	}

	heading := r.lg.NewStyle().Bold(true).Foreground(r.theme.Heading)
	text := r.lg.NewStyle().Foreground(r.theme.Text)
	muted := r.lg.NewStyle().Foreground(r.theme.Muted)
	accent := r.lg.NewStyle().Bold(true).Foreground(r.theme.Accent)
	done := r.lg.NewStyle().Foreground(r.theme.Done).Strikethrough(true)

	var b strings.Builder
	b.WriteString(heading.Render("Taskboards") + "\n")
	if len(view.Boards) == 0 {
		b.WriteString(muted.Render("  no taskboards yet; create one with `taskboard board add <title>`") + "\n")
	}
	for _, board := range view.Boards {
		line := fmt.Sprintf("%4d  %s", board.ID, board.display)
		if board.Active {
			b.WriteString(accent.Render("* "+line) + "\n")
		} else {
			b.WriteString(text.Render("  "+line) + "\n")
		}
	}

	if view.ActiveBoard == nil {
		_, err := io.WriteString(r.out, b.String())
		return err
	}

	b.WriteString("\n")
	if len(view.Cards) == 0 {
		b.WriteString(muted.Render("  no taskcards on this taskboard") + "\n")
	}
	for _, card := range view.Cards {
		b.WriteString(heading.Render(fmt.Sprintf("[%d] %s", card.ID, card.Title)) + "\n")
		for _, t := range card.Tasks {
			mark := "[ ]"
			style := text
			if t.Completed {
				mark = "[x]"
				style = done
			}
			line := fmt.Sprintf("  %s %4d  %s", mark, t.ID, style.Render(t.Title))
			if reminder := reminderText(t); reminder != "" {
				line += "  " + muted.Render(reminder)
			}
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func reminderText(t TaskView) string {
	const layout = "2006-01-02 15:04"
	switch entities.ReminderMode(t.Mode) {
	case entities.ReminderDeadline:
		return "due " + t.Deadline.Local().Format(layout)
	case entities.ReminderEvent:
		return t.EventStart.Local().Format(layout) + " - " + t.EventEnd.Local().Format(layout)
	default:
		return ""
	}
}

// Created reports a newly created entity.
func (r *Renderer) Created(kind string, id int, title string) error {
	if r.format != formatText {
		return r.encode(map[string]interface{}{"kind": kind, "id": id, "title": title})
	}
	_, err := fmt.Fprintf(r.out, "%s %d %s\n", kind, id, r.lg.NewStyle().Bold(true).Render(title))
	return err
}

// Status writes the session summary.
func (r *Renderer) Status(view StatusView) error {
	if r.format != formatText {
		return r.encode(view)
	}

	label := r.lg.NewStyle().Foreground(r.theme.Muted).Width(12)
	var b strings.Builder
	row := func(name, value string) {
		b.WriteString(label.Render(name) + value + "\n")
	}

	if !view.LoggedIn {
		row("session", "logged out")
		_, err := io.WriteString(r.out, b.String())
		return err
	}

	row("session", "logged in")
	if view.Username != "" {
		row("user", fmt.Sprintf("%s <%s>", view.Username, view.Email))
	}
	if view.HasUsedGoogleOauth {
		row("google", "yes")
	}
	if view.ExpiresAt != nil {
		expiry := view.ExpiresAt.Local().Format(time.RFC1123)
		if view.Expired {
			expiry += r.lg.NewStyle().Foreground(r.theme.Error).Render(" (expired)")
		}
		row("expires", expiry)
	}
	row("theme", view.Theme)

	_, err := io.WriteString(r.out, b.String())
	return err
}

// Notice renders a notice line for the error stream.
func (r *Renderer) Notice(n state.Snackbar) string {
	color := r.theme.Info
	switch n.Severity {
	case entities.SeveritySuccess:
		color = r.theme.Success
	case entities.SeverityError:
		color = r.theme.Error
	}
	return r.lg.NewStyle().Foreground(color).Render(n.Message)
}

func (r *Renderer) encode(v interface{}) error {
	switch r.format {
	case formatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}
