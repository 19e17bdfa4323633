// SPDX-License-Identifier: MIT
//
// Package tui holds the terminal screens: the studio, where a loaded take
// is auditioned through each filter and exported, and the device picker.
package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voccal/internal/audio"
	"voccal/internal/filter"
	"voccal/internal/log"
	"voccal/internal/pcm"
)

// Previewer plays a buffer through a filter. *audio.Player satisfies it.
type Previewer interface {
	Play(buf *pcm.Buffer, filterID string, onEnded func()) error
	Stop() error
}

// Exporter renders in the background. *audio.Renderer satisfies it.
type Exporter interface {
	RenderAsync(buf *pcm.Buffer, filterID string) <-chan audio.Outcome
}

var (
	_ Previewer = (*audio.Player)(nil)
	_ Exporter  = (*audio.Renderer)(nil)
)

type keyMap struct {
	Play   key.Binding
	Stop   key.Binding
	Export key.Binding
	Quit   key.Binding
}

var studioKeys = keyMap{
	Play:   key.NewBinding(key.WithKeys("enter", "p"), key.WithHelp("enter", "preview")),
	Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
	Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type filterItem filter.Descriptor

func (i filterItem) Title() string { return i.Name }

func (i filterItem) Description() string {
	desc := string(i.Family)
	if i.PlaybackRate != 1 {
		desc += fmt.Sprintf(" · %.2gx speed", i.PlaybackRate)
	}
	if i.Experimental {
		desc += " · experimental"
	}
	return desc
}

func (i filterItem) FilterValue() string { return i.ID }

type previewEndedMsg struct{ filterID string }

type exportDoneMsg struct {
	filterID string
	path     string
	result   *audio.Result
	err      error
}

// Studio is the bubbletea model for auditioning one take.
type Studio struct {
	source   string
	buf      *pcm.Buffer
	player   Previewer
	exporter Exporter

	list    list.Model
	spinner spinner.Model
	ended   chan string

	playing   string
	exporting string
	status    string
	err       error
}

// NewStudio creates a studio for buf, loaded from source, offering filters.
func NewStudio(source string, buf *pcm.Buffer, filters []filter.Descriptor, player Previewer, exporter Exporter) Studio {
	items := make([]list.Item, len(filters))
	for i, d := range filters {
		items[i] = filterItem(d)
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "voccal · " + filepath.Base(source)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{studioKeys.Play, studioKeys.Stop, studioKeys.Export, studioKeys.Quit}
	}

	return Studio{
		source:   source,
		buf:      buf,
		player:   player,
		exporter: exporter,
		list:     l,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		ended:    make(chan string, 1),
		status: fmt.Sprintf("%d ch · %d Hz · %s", buf.NumChannels(), buf.SampleRate(),
			buf.Duration().Round(100*time.Millisecond)),
	}
}

// Init starts listening for previews that play out.
func (m Studio) Init() tea.Cmd {
	return waitForEnded(m.ended)
}

func waitForEnded(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return previewEndedMsg{filterID: <-ch}
	}
}

func waitForExport(ch <-chan audio.Outcome, filterID, path string) tea.Cmd {
	return func() tea.Msg {
		out := <-ch
		msg := exportDoneMsg{filterID: filterID, path: path, result: out.Result, err: out.Err}
		if out.Err == nil {
			msg.err = os.WriteFile(path, out.Result.Bytes, 0o644)
		}
		return msg
	}
}

func (m Studio) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, studioKeys.Quit):
			if err := m.player.Stop(); err != nil {
				log.Warnf("stopping preview: %v", err)
			}
			return m, tea.Quit
		case key.Matches(msg, studioKeys.Play):
			return m.play()
		case key.Matches(msg, studioKeys.Stop):
			m.err = m.player.Stop()
			if m.playing != "" {
				m.status = "Stopped " + m.playing
			}
			m.playing = ""
			return m, nil
		case key.Matches(msg, studioKeys.Export):
			return m.export()
		}

	case previewEndedMsg:
		if msg.filterID == m.playing {
			m.status = "Finished " + m.playing
			m.playing = ""
		}
		return m, waitForEnded(m.ended)

	case exportDoneMsg:
		m.exporting = ""
		m.err = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("Saved %s (%s, %d bytes)", msg.path, msg.result.Duration, msg.result.Size)
		}
		return m, nil

	case spinner.TickMsg:
		if m.exporting == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Studio) selected() (filter.Descriptor, bool) {
	item, ok := m.list.SelectedItem().(filterItem)
	return filter.Descriptor(item), ok
}

func (m Studio) play() (tea.Model, tea.Cmd) {
	d, ok := m.selected()
	if !ok {
		return m, nil
	}
	ended := m.ended
	id := d.ID
	m.err = m.player.Play(m.buf, id, func() {
		select {
		case ended <- id:
		default:
		}
	})
	if m.err != nil {
		m.playing = ""
		return m, nil
	}
	m.playing = id
	m.status = "Playing " + d.Name
	return m, nil
}

func (m Studio) export() (tea.Model, tea.Cmd) {
	d, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.exporting != "" {
		m.status = "Export of " + m.exporting + " still running"
		return m, nil
	}
	m.exporting = d.ID
	m.err = nil
	m.status = "Exporting " + d.Name
	path := ExportPath(m.source, d.ID)
	return m, tea.Batch(m.spinner.Tick, waitForExport(m.exporter.RenderAsync(m.buf, d.ID), d.ID, path))
}

// ExportPath names the export of source with filterID applied.
func ExportPath(source, filterID string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + "-" + filterID + ".wav"
}

func (m Studio) View() string {
	status := m.status
	if m.exporting != "" {
		status = m.spinner.View() + " " + status
	}
	line := infoStyle.Render(status)
	if m.err != nil {
		line = errorStyle.Render("Error: " + m.err.Error())
	}
	return m.list.View() + "\n" + line
}

// Run starts a full-screen program for model. Log output goes to logPath
// while it runs so log lines do not tear the screen.
func Run(model tea.Model, logPath string) (tea.Model, error) {
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
		defer log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}
	return tea.NewProgram(model, tea.WithAltScreen()).Run()
}
