// Package model holds the bubbletea models backing the CLI's interactive
// views.
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dawaltconley/zotero-center-pdf/internal/attach"
	"github.com/dawaltconley/zotero-center-pdf/internal/cli/styles"
	"github.com/dawaltconley/zotero-center-pdf/internal/host"
)

// surfaceRow is the last observed lifecycle state of one surface.
type surfaceRow struct {
	id     host.SurfaceID
	state  attach.State
	detail string
	at     time.Time
}

// MonitorModel renders the live attachment state of every surface the
// controller tracks. Notices stream in over a channel; the model owns no
// controller state of its own.
type MonitorModel struct {
	notices <-chan attach.Notice
	rows    map[host.SurfaceID]surfaceRow
	spinner spinner.Model
	theme   *styles.Theme
	width   int
	closed  bool
}

// NewMonitorModel creates a monitor fed by the given notice channel.
func NewMonitorModel(theme *styles.Theme, notices <-chan attach.Notice) MonitorModel {
	return MonitorModel{
		notices: notices,
		rows:    make(map[host.SurfaceID]surfaceRow),
		spinner: styles.NewDefaultSpinner(theme),
		theme:   theme,
		width:   80,
	}
}

// noticeMsg wraps one controller notice.
type noticeMsg attach.Notice

// noticesClosedMsg is sent when the notice channel closes.
type noticesClosedMsg struct{}

// Init implements tea.Model.
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForNotice)
}

// waitForNotice blocks on the next controller notice.
func (m MonitorModel) waitForNotice() tea.Msg {
	n, ok := <-m.notices
	if !ok {
		return noticesClosedMsg{}
	}
	return noticeMsg(n)
}

// Update implements tea.Model.
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case noticeMsg:
		m.rows[msg.SurfaceID] = surfaceRow{
			id:     msg.SurfaceID,
			state:  msg.State,
			detail: msg.Detail,
			at:     msg.At,
		}
		return m, m.waitForNotice

	case noticesClosedMsg:
		m.closed = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m MonitorModel) View() string {
	t := m.theme
	out := t.Title.Render("centerpdf monitor") + "\n\n"

	if len(m.rows) == 0 {
		out += m.spinner.View() + t.Subtle.Render(" waiting for surfaces...") + "\n"
	} else {
		ids := make([]host.SurfaceID, 0, len(m.rows))
		for id := range m.rows {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			r := m.rows[id]
			line := fmt.Sprintf("%s %s",
				t.BadgeMuted.Render(fmt.Sprintf("surface %d", r.id)),
				m.stateStyle(r.state).Render(r.state.String()))
			if r.detail != "" {
				line += " " + t.Subtle.Render(r.detail)
			}
			line += " " + t.Subtle.Render(r.at.Format("15:04:05"))
			out += line + "\n"
		}
	}

	out += "\n" + t.HelpKey.Render("q") + t.HelpDesc.Render(" quit")
	if m.closed {
		out += "\n" + t.Subtle.Render("notice stream closed")
	}
	return t.Box.Width(m.width - 2).Render(out)
}

func (m MonitorModel) stateStyle(s attach.State) lipgloss.Style {
	switch s {
	case attach.StateAttached:
		return m.theme.SuccessStyle
	case attach.StateDetached:
		return m.theme.WarningStyle
	case attach.StateUnseen:
		return m.theme.ErrorStyle
	default:
		return m.theme.Normal
	}
}
