package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"binaural/preset"
	"binaural/session"
)

const (
	minCarrier = 50.0
	maxCarrier = 600.0
	volumeStep = 0.05
)

type snapshotMsg session.Snapshot
type tickMsg time.Time

type tuiModel struct {
	ctrl       *session.Controller
	snap       session.Snapshot
	deviceLine string
	frame      time.Time
	playStart  time.Time
	editing    bool   // typing a custom beat
	input      string // custom beat being typed
	errText    string
	width      int
}

var (
	tuiMu      sync.Mutex
	tuiProgram *tea.Program
)

// Pulse colors from dim to bright, indexed by beat phase.
var (
	pulseColors = []string{"236", "52", "88", "124", "160", "196", "203", "210", "217", "224"}
	pulseStyles []lipgloss.Style

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
)

func init() {
	for _, c := range pulseColors {
		pulseStyles = append(pulseStyles, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
}

func newTUIModel(ctrl *session.Controller, deviceLine string) tuiModel {
	return tuiModel{ctrl: ctrl, snap: ctrl.Snapshot(), deviceLine: deviceLine}
}

func runTUI(ctrl *session.Controller, deviceLine string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(newTUIModel(ctrl, deviceLine), opts...)
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
	defer func() {
		tuiMu.Lock()
		tuiProgram = nil
		tuiMu.Unlock()
	}()

	updates := ctrl.Subscribe()
	go func() {
		for s := range updates {
			p.Send(snapshotMsg(s))
		}
	}()

	_, err := p.Run()
	return err
}

// quitTUI asks a running TUI to exit and reports whether one was running.
func quitTUI() bool {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p == nil {
		return false
	}
	p.Quit()
	return true
}

func tuiTick() tea.Cmd {
	return tea.Tick(40*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.frame = time.Time(msg)
		return m, tuiTick()

	case snapshotMsg:
		prev := m.snap.State
		m.snap = session.Snapshot(msg)
		if prev != session.Playing && m.snap.State == session.Playing {
			m.playStart = time.Now()
		}

	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.key(msg)
	}
	return m, nil
}

func (m tuiModel) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errText = ""
	s := m.snap
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ", "space", "enter":
		if m.ctrl.Toggle() != session.Playing && s.State == session.Idle {
			if s.Beat == 0 {
				m.errText = "no beat selected: press p for a preset or c for a custom value"
			} else {
				m.errText = "could not start playback: see diagnostics_log.txt"
			}
		}
	case "left", "h":
		m.apply(session.CarrierChange{Hz: clampCarrier(s.Carrier - 1)})
	case "right", "l":
		m.apply(session.CarrierChange{Hz: clampCarrier(s.Carrier + 1)})
	case "shift+left", "H":
		m.apply(session.CarrierChange{Hz: clampCarrier(s.Carrier - 10)})
	case "shift+right", "L":
		m.apply(session.CarrierChange{Hz: clampCarrier(s.Carrier + 10)})
	case "up", "k":
		m.apply(session.VolumeChange{Volume: stepVolume(s.Volume, volumeStep)})
	case "down", "j":
		m.apply(session.VolumeChange{Volume: stepVolume(s.Volume, -volumeStep)})
	case "p", "P":
		step := 1
		if msg.String() == "P" {
			step = -1
		}
		name, _ := s.Source.PresetName()
		m.apply(session.PresetChange{Name: preset.Next(name, step).Name})
	case "c":
		m.editing = true
		m.input = ""
	case "x":
		m.apply(session.ClearBeatChange{})
	}
	m.snap = m.ctrl.Snapshot()
	return m, nil
}

func (m tuiModel) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyEnter:
		m.editing = false
		hz, err := strconv.ParseFloat(m.input, 64)
		if err != nil {
			m.errText = fmt.Sprintf("not a number: %q", m.input)
			break
		}
		m.apply(session.CustomBeatChange{Hz: hz})
		m.snap = m.ctrl.Snapshot()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r >= '0' && r <= '9') || r == '.' {
				m.input += string(r)
			}
		}
	}
	return m, nil
}

func (m *tuiModel) apply(ch session.Change) {
	if err := m.ctrl.Apply(ch); err != nil {
		m.errText = err.Error()
	}
}

func clampCarrier(hz float64) float64 {
	return math.Max(minCarrier, math.Min(maxCarrier, hz))
}

func stepVolume(v, d float64) float64 {
	v = math.Round((v+d)*100) / 100
	return math.Max(0, math.Min(1, v))
}

// pulseLevel maps the beat phase at t to an index into pulseStyles.
func pulseLevel(beat float64, t time.Duration) int {
	if beat == 0 {
		return 0
	}
	b := (1 + math.Cos(2*math.Pi*beat*t.Seconds())) / 2
	return int(b * float64(len(pulseStyles)-1))
}

func sourceText(src preset.BeatSource) string {
	if name, ok := src.PresetName(); ok {
		if p, known := preset.Lookup(name); known {
			return p.Label()
		}
	}
	if hz, ok := src.CustomHz(); ok {
		return "custom (" + strconv.FormatFloat(hz, 'g', -1, 64) + " Hz)"
	}
	return "none"
}

func volumeBar(v float64, width int) string {
	n := int(math.Round(v * float64(width)))
	return strings.Repeat("█", n) + dimStyle.Render(strings.Repeat("░", width-n))
}

func (m tuiModel) View() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(titleStyle.Render("binaural beat generator") + "\n\n")

	if s.State == session.Playing {
		level := pulseLevel(s.Beat, m.frame.Sub(m.playStart))
		b.WriteString(pulseStyles[level].Render("●") + " " + playStyle.Render("PLAYING"))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s", time.Since(m.playStart).Round(time.Second))) + "\n")
	} else {
		b.WriteString(dimStyle.Render("○ STOPPED") + "\n")
	}
	b.WriteString(dimStyle.Render(m.deviceLine) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(value) + "\n")
	}
	row("carrier", fmt.Sprintf("%g Hz", s.Carrier))
	row("beat", sourceText(s.Source))
	if s.Beat != 0 {
		row("ears", fmt.Sprintf("L %.2f Hz   R %.2f Hz", s.LeftHz, s.RightHz))
	}
	row("volume", volumeBar(s.Volume, 20)+fmt.Sprintf(" %.2f", s.Volume))

	if name, ok := s.Source.PresetName(); ok {
		if p, known := preset.Lookup(name); known {
			b.WriteString("\n" + dimStyle.Render(p.Description) + "\n")
		}
	}

	b.WriteString("\n")
	for _, p := range preset.All() {
		name, _ := s.Source.PresetName()
		if p.Name == name {
			b.WriteString(activeStyle.Render("▶ "+p.Label()) + "\n")
		} else {
			b.WriteString(dimStyle.Render("  "+p.Label()) + "\n")
		}
	}

	if m.editing {
		b.WriteString("\n" + labelStyle.Render("custom beat Hz: ") + valueStyle.Render(m.input+"▏") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + errStyle.Render("⚠ "+m.errText) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("space start/stop  ←/→ carrier (shift ×10)  ↑/↓ volume  p/P preset  c custom  x clear  q quit") + "\n")
	b.WriteString(helpStyle.Render("binaural "+version) + "\n")
	return b.String()
}
