package app

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"docsentry/review"
	"docsentry/scan"
)

// progressMsg updates the progress line while a scan runs.
// Format in View: "⏳ Scanning [num/total]: member"
type progressMsg struct {
	Count  int
	Total  int
	Member string
}

// scanProgress is the latest snapshot written by the scan command and read
// by the progress poll. It is shared by pointer between the two.
type scanProgress struct {
	mu     sync.Mutex
	latest progressMsg
	have   bool
}

func (p *scanProgress) reset() {
	p.mu.Lock()
	p.have = false
	p.mu.Unlock()
}

func (p *scanProgress) set(count, total int, member string) {
	p.mu.Lock()
	p.latest = progressMsg{Count: count, Total: total, Member: member}
	p.have = true
	p.mu.Unlock()
}

func (p *scanProgress) snapshot() (progressMsg, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.have
}

// Styles (exported styling used by CLI usage/version output too)
var (
	appStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7"))

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	reverseStyle = lipgloss.NewStyle().Reverse(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Rows outside the box body: blank, logo (2), blank, file, engine, report
// line, frame title, box borders (2), status and footer.
const chromeRows = 12

type viewMode int

const (
	modeList viewMode = iota
	modeScanning
	modeBrowser
	modeViewer
)

type model struct {
	src source
	log logrus.FieldLogger

	mode    viewMode
	list    review.List
	browser review.Browser
	viewer  review.Viewer

	// Scan outcome
	report   *scan.Report
	scanTime time.Duration

	// Window size
	width  int
	height int

	// Wrap width for the text viewer; 0 follows the window
	viewerWidth int
	trustCount  int

	// UI state
	status       string // last error, shown instead of the frame status
	quitting     bool
	memUsageText string // e.g., " • Heap XXX MB • CPU YY%"
	progressText string

	progress *scanProgress
	cpu      *cpuSampler
}

func newModel(src source, log logrus.FieldLogger, viewerWidth, trustCount int) model {
	m := model{
		src:         src,
		log:         log,
		mode:        modeList,
		width:       120,
		height:      30,
		viewerWidth: viewerWidth,
		trustCount:  trustCount,
		progress:    &scanProgress{},
		cpu:         &cpuSampler{},
	}
	m.list = review.NewList(filepath.Base(src.Path()), src.Items(), listHelp, m.bodyHeight())
	return m
}

const listHelp = "enter: view • s: scan • q: quit"

func (m model) Init() tea.Cmd {
	return m.memUsageTick()
}

func (m model) bodyHeight() int {
	return max(1, m.height-chromeRows)
}

// bodyWidth is the text width inside the box; border and padding take four
// columns and two more are kept free at the right edge.
func (m model) bodyWidth() int {
	return max(10, m.width-6)
}

func (m model) textWidth() int {
	if m.viewerWidth > 0 && m.viewerWidth < m.bodyWidth() {
		return m.viewerWidth
	}
	return m.bodyWidth()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list = m.list.Resize(m.bodyHeight())
		m.browser = m.browser.Resize(m.bodyHeight())
		if m.mode == modeViewer {
			m.viewer = m.viewer.Resize(m.textWidth(), m.bodyHeight())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		// While scanning, only ctrl+c is honoured
		if m.mode == modeScanning {
			return m, nil
		}
		m.status = ""
		for _, k := range translateKey(msg) {
			var cmd tea.Cmd
			m, cmd = m.handleKey(k)
			if cmd != nil {
				return m, cmd
			}
		}
		return m, nil

	case scanResultMsg:
		m.scanTime = msg.elapsed
		if msg.err != nil {
			m.mode = modeList
			m.status = "Scan failed: " + msg.err.Error()
			m.log.WithError(msg.err).Error("scan failed")
			return m, nil
		}
		m.report = msg.report
		m.browser = review.NewBrowser(filepath.Base(m.src.Path()), msg.report.Findings, m.bodyHeight())
		m.mode = modeBrowser
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, m.memUsageTick()

	case progressTick:
		// Periodic poll: read the most recent progress snapshot
		lp, hv := m.progress.snapshot()
		if hv {
			m.progressText = fmt.Sprintf("[%d/%d]: %s", lp.Count, lp.Total, lp.Member)
		}
		if m.mode == modeScanning {
			return m, pollProgress()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(k review.Key) (model, tea.Cmd) {
	switch m.mode {
	case modeList:
		var act review.ListAction
		m.list, act = m.list.Handle(k)
		switch act {
		case review.ListClose:
			m.quitting = true
			return m, tea.Quit
		case review.ListOpen:
			return m.openSelected(), nil
		case review.ListScan:
			m.mode = modeScanning
			m.progressText = ""
			m.progress.reset()
			return m, tea.Batch(m.runScan(), pollProgress())
		}

	case modeBrowser:
		var closed bool
		m.browser, closed = m.browser.Handle(k)
		if closed {
			m.mode = modeList
		}

	case modeViewer:
		var closed bool
		m.viewer, closed = m.viewer.Handle(k)
		if closed {
			m.mode = modeList
		}
	}
	return m, nil
}

func (m model) openSelected() model {
	i, ok := m.list.Selected()
	if !ok {
		return m
	}
	title, data, err := m.src.Open(i)
	if err != nil {
		m.status = fmt.Sprintf("Cannot open %s: %v", title, err)
		m.log.WithFields(logrus.Fields{"container": m.src.Path(), "item": i}).WithError(err).Warn("open failed")
		return m
	}
	m.viewer = review.NewViewer(title, data, m.textWidth(), m.bodyHeight())
	m.mode = modeViewer
	return m
}

// Background scan command
func (m model) runScan() tea.Cmd {
	src := m.src
	progress := m.progress
	return func() tea.Msg {
		start := time.Now()
		r, err := src.Scan(progress.set)
		return scanResultMsg{report: r, err: err, elapsed: time.Since(start)}
	}
}

func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	width := m.width
	if width <= 0 {
		width = 120
	}

	var parts []string
	parts = append(parts, "", renderLogo(), "")

	fileLine := fmt.Sprintf("📄 File: %s • %s", m.src.Path(), m.src.Kind())
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Render(clip(fileLine, width)))

	engine := fmt.Sprintf("⚙️ Engine: %d items • %d trusted prefixes%s", m.list.Len(), m.trustCount, m.memUsageText)
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Render(clip(engine, width)))
	parts = append(parts, m.reportLine(width))

	var f review.Frame
	switch m.mode {
	case modeBrowser:
		f = m.browser.Frame()
	case modeViewer:
		f = m.viewer.Frame()
	default:
		f = m.list.Frame()
	}
	if m.mode == modeScanning {
		f.Reverse = nil
	}

	parts = append(parts, titleStyle.Render(clip(f.Title, width)))
	inner := m.bodyWidth()
	body := paintFrame(f, inner, m.bodyHeight())
	parts = append(parts, appStyle.Width(inner+2).Height(m.bodyHeight()).Render(body))

	status := infoStyle.Render(clip(f.Status, width))
	if m.status != "" {
		status = errorStyle.Render(clip(m.status, width))
	}
	parts = append(parts, status)
	parts = append(parts, footerStyle.Render(clip(m.footer(), width)))
	return strings.Join(parts, "\n")
}

func renderLogo() string {
	logoTop := " █▀▄ █▀█ █▀▀ █▀ █▀▀ █▄ █ ▀█▀ █▀█ █▄█"
	logoBottom := fmt.Sprintf(" █▄▀ █▄█ █▄▄ ▄█ ██▄ █ ▀█  █  █▀▄  █   v%s", version)
	if w := lipgloss.Width(logoBottom) - lipgloss.Width(logoTop); w > 0 {
		logoTop += strings.Repeat(" ", w)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Align(lipgloss.Left).Render(logoTop + "\n" + logoBottom)
}

func (m model) reportLine(width int) string {
	switch {
	case m.mode == modeScanning:
		txt := "⏳ Scanning"
		if m.progressText != "" {
			txt += " " + m.progressText
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Render(clip(txt, width))
	case m.report == nil:
		return infoStyle.Render("Press s to scan for suspicious content")
	}
	line := fmt.Sprintf("📋 %s • %.2fs", m.report.Summary(), m.scanTime.Seconds())
	if len(m.report.Flags) > 0 {
		return warningStyle.Render(clip(line+" • ⚠️ "+flagSummary(m.report.Flags), width))
	}
	return successStyle.Render(clip(line, width))
}

// flagSummary counts structural flags per kind, in first-seen order.
func flagSummary(flags []scan.Flag) string {
	counts := map[scan.FlagKind]int{}
	var order []scan.FlagKind
	for _, f := range flags {
		if counts[f.Kind] == 0 {
			order = append(order, f.Kind)
		}
		counts[f.Kind]++
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, fmt.Sprintf("%s ×%d", k, counts[k]))
	}
	return strings.Join(out, ", ")
}

func (m model) footer() string {
	switch m.mode {
	case modeScanning:
		return "🔚 scanning… • ctrl+c quit"
	case modeBrowser:
		if m.browser.Mode() == review.ModeEditingFilter {
			return "🔚 type to filter • enter apply • esc cancel"
		}
		return "🔚 ↑/↓ scroll • pgup/pgdn page • / or ctrl+f filter • esc/q back"
	case modeViewer:
		return "🔚 arrows move • pgup/pgdn page • ctrl+t strip markup • esc/q back"
	}
	return "🔚 ↑/↓ select • enter view • s scan • pgup/pgdn page • q quit"
}

// paintFrame renders frame lines clipped to width, applying reverse spans.
func paintFrame(f review.Frame, width, height int) string {
	spans := map[int][]review.Span{}
	for _, s := range f.Reverse {
		spans[s.Row] = append(spans[s.Row], s)
	}
	rows := make([]string, 0, height)
	for i, line := range f.Lines {
		if i >= height {
			break
		}
		runes := fitRunes([]rune(review.Sanitize(line)), width)
		rows = append(rows, paintRow(runes, spans[i], width))
	}
	return strings.Join(rows, "\n")
}

func fitRunes(runes []rune, width int) []rune {
	w := 0
	for i, r := range runes {
		w += runewidth.RuneWidth(r)
		if w > width {
			return runes[:i]
		}
	}
	return runes
}

func paintRow(runes []rune, spans []review.Span, width int) string {
	if len(spans) == 0 {
		return string(runes)
	}
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		start, end := max(s.Start, pos), s.End
		if start >= end || start >= width {
			continue
		}
		// the cursor may sit past the end of the line
		for len(runes) < end && len(runes) < width {
			runes = append(runes, ' ')
		}
		end = min(end, len(runes))
		if start >= end {
			continue
		}
		b.WriteString(string(runes[pos:start]))
		b.WriteString(reverseStyle.Render(string(runes[start:end])))
		pos = end
	}
	b.WriteString(string(runes[min(pos, len(runes)):]))
	return b.String()
}

func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func (m model) memUsageTick() tea.Cmd {
	sampler := m.cpu
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		// Sample memory and CPU
		mem, cpu := sampler.sample()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %5.1f MB • Total %5.1f MB • CPU %5.1f%%", float64(mem.heap)/(1024*1024), float64(mem.rss)/(1024*1024), cpu)}
	})
}

func pollProgress() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return progressTick{}
	})
}

// cpuSampler keeps the previous rusage reading so CPU load can be computed
// as a delta between ticks.
type cpuSampler struct {
	lastWall time.Time
	lastProc time.Duration
	have     bool
}

func (c *cpuSampler) sample() (mem struct{ heap, rss uint64 }, cpu float64) {
	// Sample memory
	var rusage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &rusage)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mem.heap = ms.HeapAlloc
	mem.rss = uint64(rusage.Maxrss * 1024) // KB to bytes

	// Sample CPU (process user+sys time from rusage)
	nowWall := time.Now()
	user := time.Duration(rusage.Utime.Sec)*time.Second + time.Duration(rusage.Utime.Usec)*time.Microsecond
	sys := time.Duration(rusage.Stime.Sec)*time.Second + time.Duration(rusage.Stime.Usec)*time.Microsecond
	nowProc := user + sys
	if c.have {
		wallDiff := nowWall.Sub(c.lastWall)
		procDiff := nowProc - c.lastProc
		if wallDiff > 0 {
			cpu = procDiff.Seconds() / wallDiff.Seconds() * 100
			if cpu < 0 {
				cpu = 0
			}
		}
	}
	c.lastWall = nowWall
	c.lastProc = nowProc
	c.have = true
	return
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return formatBytes(uint64(size))
}

// Messages for TUI updates
type scanResultMsg struct {
	report  *scan.Report
	err     error
	elapsed time.Duration
}

type memUsageMsg struct {
	Text string
}

type progressTick struct{}
