package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/component"
	"github.com/san-kum/orbsim/internal/ecs"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/vmath"
)

const (
	width           = 80
	height          = 24
	trailCapacity   = 240
	historyCapacity = 600
)

type TickMsg time.Time

// Rebuilder repopulates w from scratch; the live view calls it on reset.
type Rebuilder func(w *sim.World) error

// Model is a bubbletea model that ticks a world once per frame and draws a
// projection of every body with a transform.
type Model struct {
	world     *sim.World
	frame     time.Duration
	rebuild   Rebuilder
	observers []sim.Observer
	title     string

	canvas   *Canvas
	camera   *Camera
	trails   map[ecs.Entity][]vmath.Vec3
	energy   []float64
	energy0  float64
	follow   int
	frozen   int
	theme    Theme
	style    styles
	showHelp bool
	err      error
}

type Option func(*Model)

// WithRebuilder enables the reset key.
func WithRebuilder(r Rebuilder) Option {
	return func(m *Model) { m.rebuild = r }
}

// WithObserver receives every tick the view runs.
func WithObserver(o sim.Observer) Option {
	return func(m *Model) { m.observers = append(m.observers, o) }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// NewModel builds a live view of w. frame is both the redraw interval and
// the wall time fed to each tick, so the clock scale sets simulated speed.
func NewModel(w *sim.World, frame time.Duration, title string, opts ...Option) Model {
	if frame <= 0 {
		frame = time.Second / 30
	}
	m := Model{
		world:  w,
		frame:  frame,
		title:  title,
		canvas: NewCanvas(width, height),
		camera: NewCamera(astro.AU),
		trails: make(map[ecs.Entity][]vmath.Vec3),
		follow: -1,
		theme:  Themes[0],
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.style = m.theme.styles()
	m.restart()
	return m
}

// restart resolves transforms for the current scene and refits the camera.
func (m *Model) restart() {
	m.world.Tick(0)
	clear(m.trails)
	m.energy = m.energy[:0]
	m.energy0 = m.world.Energy()
	m.frozen = 0
	m.follow = -1
	m.camera.Center = m.barycenter()
	m.camera.Zoom = 1
	m.camera.Fit(m.positions())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	clock := m.world.Clock
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		clock.Toggle()
	case ">", ".":
		m.setScale(clock.Scale() * 2)
	case "<", ",":
		m.setScale(clock.Scale() / 2)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "left", "h":
		m.camera.Rotate(-0.1, 0)
	case "right", "l":
		m.camera.Rotate(0.1, 0)
	case "up", "k":
		m.camera.Rotate(0, 0.1)
	case "down", "j":
		m.camera.Rotate(0, -0.1)
	case "f":
		m.cycleFollow()
	case "c":
		clear(m.trails)
	case "r":
		m.reset()
	case "t":
		m.theme = nextTheme(m.theme)
		m.style = m.theme.styles()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) setScale(s float64) {
	if err := m.world.Clock.SetScale(s); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

func (m *Model) reset() {
	if m.rebuild == nil {
		return
	}
	if err := m.rebuild(m.world); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.restart()
}

func (m *Model) cycleFollow() {
	n := m.world.Metadata.Len()
	if n == 0 {
		m.follow = -1
		return
	}
	m.follow++
	if m.follow >= n {
		m.follow = -1
	}
}

// step advances the world one frame and records trails and energy.
func (m *Model) step() {
	r := m.world.Tick(m.frame)
	for _, o := range m.observers {
		o.OnTick(m.world, r)
	}
	m.frozen += len(r.Frozen)
	if r.Dt == 0 {
		return
	}

	m.world.Transforms.Each(func(e ecs.Entity, tr *component.Transform) {
		trail := append(m.trails[e], tr.World.TranslationPart())
		if len(trail) > trailCapacity {
			trail = trail[1:]
		}
		m.trails[e] = trail
	})

	m.energy = append(m.energy, m.drift())
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) drift() float64 {
	if m.energy0 == 0 {
		return 0
	}
	return (m.world.Energy() - m.energy0) / math.Abs(m.energy0)
}

func (m *Model) positions() []vmath.Vec3 {
	var ps []vmath.Vec3
	m.world.Transforms.Each(func(_ ecs.Entity, tr *component.Transform) {
		ps = append(ps, tr.World.TranslationPart())
	})
	return ps
}

func (m *Model) barycenter() vmath.Vec3 {
	var sum vmath.Vec3
	mass := 0.0
	_, bodies := m.world.FreeBodies()
	for _, b := range bodies {
		sum = sum.Add(b.Position.Scale(b.Mass))
		mass += b.Mass
	}
	if mass == 0 {
		return vmath.Vec3{}
	}
	return sum.Scale(1 / mass)
}

// followed returns the entity the camera tracks, if any.
func (m *Model) followed() (ecs.Entity, bool) {
	if m.follow < 0 {
		return ecs.Nil, false
	}
	i, found := 0, ecs.Nil
	m.world.Metadata.Each(func(e ecs.Entity, _ *component.Metadata) {
		if i == m.follow {
			found = e
		}
		i++
	})
	return found, !found.IsNil()
}

func (m *Model) draw() {
	m.canvas.Clear()
	if e, ok := m.followed(); ok {
		if tr, err := m.world.Transform(e); err == nil {
			m.camera.Center = tr.World.TranslationPart()
		}
	}
	w, h := m.canvas.Dots()

	for _, trail := range m.trails {
		px, py, prev := 0, 0, false
		for _, p := range trail {
			x, y, ok := m.camera.Project(p, w, h)
			if ok && prev {
				m.canvas.DrawLine(px, py, x, y)
			} else if ok {
				m.canvas.Set(x, y)
			}
			px, py, prev = x, y, ok
		}
	}

	m.world.Transforms.Each(func(e ecs.Entity, tr *component.Transform) {
		x, y, ok := m.camera.Project(tr.World.TranslationPart(), w, h)
		if !ok {
			return
		}
		m.canvas.Disc(x, y, markerRadius(m.world, e))
	})
}

func markerRadius(w *sim.World, e ecs.Entity) int {
	md, ok := w.Metadata.Get(e)
	if !ok {
		return 0
	}
	switch md.Kind {
	case component.KindStar:
		return 2
	case component.KindPlanet:
		return 1
	}
	return 0
}

// View renders the canvas and the stats panel.
func (m Model) View() string {
	m.draw()
	st := m.style
	clock := m.world.Clock

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	if clock.Paused() {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy drift"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	now := clock.Now()
	row("Date", now.Time().Format("2006-01-02 15:04"))
	row("JD", fmt.Sprintf("%.4f", float64(now)))
	row("Elapsed", fmt.Sprintf("%.2f d", clock.Elapsed()/astro.SecondsPerDay))
	row("Scale", fmt.Sprintf("x%g", clock.Scale()))
	row("Zoom", fmt.Sprintf("%.2f (%.3g AU)", m.camera.Zoom, m.camera.Span/m.camera.Zoom/astro.AU))
	if len(m.energy) > 0 {
		row("Drift", fmt.Sprintf("%.3e", m.energy[len(m.energy)-1]))
	}
	if m.frozen > 0 {
		row("Frozen", st.warning.Render(fmt.Sprintf("%d", m.frozen)))
	}

	s.WriteString("\nBODIES\n")
	followed, _ := m.followed()
	m.world.Metadata.Each(func(e ecs.Entity, md *component.Metadata) {
		line := fmt.Sprintf("%-10s %-9s", md.Name, md.Kind)
		if tr, err := m.world.Transform(e); err == nil {
			d := tr.World.TranslationPart().Sub(m.camera.Center).Len() / astro.AU
			line += fmt.Sprintf(" %.3f AU", d)
		}
		if e == followed {
			s.WriteString(st.selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Render(line) + "\n")
		}
	})

	if m.err != nil {
		s.WriteString("\n" + st.warning.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause </>:Speed +/-:Zoom F:Follow\nR:Reset T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const helpText = `
  Space     pause or resume the clock
  < >       halve or double the time scale
  + -       zoom
  arrows    rotate the view (h j k l)
  f         follow the next body
  c         clear trails
  r         rebuild the scene
  t         cycle themes
  q         quit`
