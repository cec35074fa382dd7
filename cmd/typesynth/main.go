package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/typesynth/playback"
	"github.com/cwbudde/typesynth/preset"
	"github.com/cwbudde/typesynth/synth"
)

var scaleNames = []string{"pentatonic", "major", "minor", "blues", "chromatic"}

var oscillators = []synth.OscillatorType{synth.Sine, synth.Square, synth.Sawtooth, synth.Triangle}

func main() {
	sampleRate := flag.Int("sample-rate", 44100, "Output sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	logPath := flag.String("log", "", "Write engine diagnostics to this file (optional)")
	micPath := flag.String("mic", "", "Mono WAV file looped as the microphone input (optional)")
	bpm := flag.Float64("bpm", 110, "Metronome tempo")
	flag.Parse()

	settings := preset.DefaultSettings()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		settings = loaded
	}

	engine := synth.NewAudioEngine(*sampleRate)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		engine.SetLogger(log.New(f, "", log.LstdFlags|log.Lmicroseconds))
	}

	if *micPath != "" {
		src, err := playback.NewWAVSource(*micPath, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading mic source %q: %v\n", *micPath, err)
			os.Exit(1)
		}
		engine.SetMicrophoneSource(src)
	}

	out, err := playback.NewOutput(engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	settings.Apply(engine)
	if err := out.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting playback: %v\n", err)
		os.Exit(1)
	}

	m := initialModel(engine, out, settings, *bpm)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type tickMsg time.Time

type statusMsg string

type model struct {
	engine *synth.AudioEngine
	out    *playback.Output

	scaleIdx   int
	oscIdx     int
	harmonizer bool
	adrenaline float64
	reverbMix  float64

	metronome bool
	beat      int
	bpm       float64

	recording bool
	status    string
	lastKey   string
}

func initialModel(engine *synth.AudioEngine, out *playback.Output, settings *preset.Settings, bpm float64) model {
	m := model{
		engine:     engine,
		out:        out,
		harmonizer: settings.Harmonizer,
		adrenaline: settings.Adrenaline,
		reverbMix:  settings.Profile.ReverbMix,
		bpm:        bpm,
	}
	for i, name := range scaleNames {
		if s, err := synth.ScaleByName(name); err == nil && sameScale(s, settings.Scale) {
			m.scaleIdx = i
		}
	}
	for i, osc := range oscillators {
		if osc == settings.Profile.Oscillator {
			m.oscIdx = i
		}
	}
	return m
}

func sameScale(a, b synth.Scale) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m model) Init() tea.Cmd {
	return m.metronomeCmd()
}

func (m model) metronomeCmd() tea.Cmd {
	if m.bpm <= 0 {
		return nil
	}
	return tea.Tick(time.Duration(float64(time.Minute)/m.bpm), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.metronome {
			if err := m.engine.PlayMetronomeTick(m.beat%4 == 0); err != nil {
				m.status = err.Error()
			}
			m.beat++
		}
		return m, m.metronomeCmd()

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEscape:
		return m, tea.Quit

	case tea.KeyTab:
		m.oscIdx = (m.oscIdx + 1) % len(oscillators)
		p := m.engine.Profile()
		p.Oscillator = oscillators[m.oscIdx]
		m.engine.SetProfile(p)
		return m, nil

	case tea.KeyCtrlS:
		m.scaleIdx = (m.scaleIdx + 1) % len(scaleNames)
		s, err := synth.ScaleByName(scaleNames[m.scaleIdx])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.engine.SetScale(s)
		return m, nil

	case tea.KeyCtrlH:
		m.harmonizer = !m.harmonizer
		m.engine.SetHarmonizer(m.harmonizer)
		return m, nil

	case tea.KeyCtrlT:
		m.metronome = !m.metronome
		m.beat = 0
		return m, nil

	case tea.KeyCtrlG:
		if err := m.engine.EnableMicrophone(true); err != nil {
			m.engine.PlayError()
			m.status = err.Error()
		} else {
			m.status = "microphone passthrough on"
		}
		return m, nil

	case tea.KeyCtrlR:
		return m.toggleRecording()

	case tea.KeyUp:
		m.adrenaline = clamp01(m.adrenaline + 0.1)
		m.engine.SetAdrenaline(m.adrenaline)
		return m, nil

	case tea.KeyDown:
		m.adrenaline = clamp01(m.adrenaline - 0.1)
		m.engine.SetAdrenaline(m.adrenaline)
		return m, nil

	case tea.KeyRight:
		m.reverbMix = clamp01(m.reverbMix + 0.05)
		m.engine.UpdateParam("reverbMix", m.reverbMix)
		return m, nil

	case tea.KeyLeft:
		m.reverbMix = clamp01(m.reverbMix - 0.05)
		m.engine.UpdateParam("reverbMix", m.reverbMix)
		return m, nil
	}

	// Anything printable plays.
	s := msg.String()
	if msg.Type == tea.KeySpace {
		s = " "
	}
	if len([]rune(s)) == 1 {
		ch := []rune(s)[0]
		if err := m.engine.PlayKey(ch); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.lastKey = s
	}
	return m, nil
}

func (m model) toggleRecording() (tea.Model, tea.Cmd) {
	if !m.recording {
		if err := m.out.StartRecording(nil); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.recording = true
		m.status = "recording..."
		return m, nil
	}
	m.recording = false
	clip, err := m.out.StopRecording()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	name := fmt.Sprintf("typesynth-%s.wav", time.Now().Format("20060102-150405"))
	if err := os.WriteFile(name, clip.AudioWAV, 0o644); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = "saved " + name
	return m, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n  " + titleStyle.Render("TYPESYNTH") + "  type to play\n\n")

	line := func(label, value string) {
		b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value) + "\n")
	}

	line("scale", scaleNames[m.scaleIdx])
	line("oscillator", oscillators[m.oscIdx].String())
	line("harmonizer", onOff(m.harmonizer))
	line("metronome", onOff(m.metronome))
	line("adrenaline", fmt.Sprintf("%.1f", m.adrenaline))
	line("reverb", fmt.Sprintf("%.2f", m.reverbMix))
	line("voices", fmt.Sprintf("%d active, %d fading", m.engine.ActiveVoices(), m.engine.FadingVoices()))
	if m.lastKey != "" {
		line("last key", m.lastKey)
	}

	if m.recording {
		b.WriteString("\n  " + recStyle.Render("● REC") + "\n")
	}
	if m.status != "" {
		b.WriteString("\n  " + statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + labelStyle.Render("  [Tab]Osc [^S]Scale [^H]Harmony [^T]Metronome [^G]Mic [^R]Record [↑↓]Adrenaline [←→]Reverb [Esc]Quit") + "\n")
	return b.String()
}

func onOff(on bool) string {
	if on {
		return onStyle.Render("on")
	}
	return "off"
}
