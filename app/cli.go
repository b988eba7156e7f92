package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsentry/config"
	"docsentry/container"
	"docsentry/scan"
)

var version = "0.1"

// Arguments for CLI flags (used to seed TUI)
type Arguments struct {
	Path        string
	ConfigFile  string
	LogFile     string
	Width       int
	ShowHelp    bool
	ShowVersion bool
}

// parseArguments parses command line args
func parseArguments(args []string) (*Arguments, error) {
	result := &Arguments{}

	expectConfig := false
	expectLog := false
	expectWidth := false

	for _, a := range args {
		if expectConfig {
			result.ConfigFile = a
			expectConfig = false
			continue
		}
		if expectLog {
			result.LogFile = a
			expectLog = false
			continue
		}
		if expectWidth {
			n, err := strconv.Atoi(a)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("--width needs a positive number, got %q", a)
			}
			result.Width = n
			expectWidth = false
			continue
		}
		switch a {
		case "--config", "-c":
			expectConfig = true
		case "--log":
			expectLog = true
		case "--width", "-w":
			expectWidth = true
		case "--help", "-h":
			result.ShowHelp = true
		case "--version", "-v":
			result.ShowVersion = true
		default:
			if len(a) > 1 && a[0] == '-' {
				return nil, fmt.Errorf("unknown flag %s", a)
			}
			if result.Path != "" {
				return nil, fmt.Errorf("only one file can be opened, got %s and %s", result.Path, a)
			}
			result.Path = a
		}
	}
	switch {
	case expectConfig:
		return nil, errors.New("--config needs a file")
	case expectLog:
		return nil, errors.New("--log needs a file")
	case expectWidth:
		return nil, errors.New("--width needs a number")
	}
	return result, nil
}

// showUsage (styled)
func showUsage() {
	fmt.Println()
	fmt.Println(renderLogo())
	fmt.Println()

	// Usage
	fmt.Println(subHeaderStyle.Render("USAGE"))
	fmt.Println(infoStyle.Render(wrapTextWithIndent("  docsentry ", "[--config FILE] [--log FILE] [--width N] <file>", 100)))
	fmt.Println()

	// Flags
	fmt.Println(subHeaderStyle.Render("FLAGS"))
	fmt.Println(infoStyle.Render("  --config, -c FILE       TOML config (extra trusted prefixes, viewer width, log)"))
	fmt.Println(infoStyle.Render("  --log FILE              Log file (default docsentry.log in the temp dir)"))
	fmt.Println(infoStyle.Render("  --width, -w N           Wrap width of the text viewer"))
	fmt.Println(infoStyle.Render("  --help, -h              Show help"))
	fmt.Println(infoStyle.Render("  --version, -v           Show version"))
	fmt.Println()

	// Inputs
	fmt.Println(subHeaderStyle.Render("FILES"))
	fmt.Println(infoStyle.Render(wrapTextWithIndent("  ", config.GetFileTypeDescription(), 100)))
	fmt.Println()

	// Examples
	fmt.Println(subHeaderStyle.Render("EXAMPLES"))
	fmt.Println(infoStyle.Render("  docsentry invoice.docm"))
	fmt.Println(infoStyle.Render("  docsentry --width 100 statement.pdf"))
	fmt.Println(infoStyle.Render("  docsentry --config ~/.config/docsentry.toml inbox.mbox"))
	fmt.Println()
}

// showVersion
func showVersion() {
	// successStyle is provided in tui.go (same package).
	fmt.Println(successStyle.Render("docsentry v" + version))
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(width - prefixWidth).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

// Run parses CLI arguments and starts the TUI. Returns a process exit code.
func Run() int {
	args, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		showUsage()
		return 1
	}
	if args.ShowHelp {
		showUsage()
		return 0
	}
	if args.ShowVersion {
		showVersion()
		return 0
	}
	if args.Path == "" {
		showUsage()
		return 1
	}

	cfg := config.Default()
	if args.ConfigFile != "" {
		if cfg, err = config.Load(args.ConfigFile); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
			return 1
		}
	}
	if args.LogFile != "" {
		cfg.Log.File = args.LogFile
	}
	if args.Width > 0 {
		cfg.Viewer.Width = args.Width
	}

	log, closer, err := newLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	defer closer.Close()

	trust := scan.NewTrustFilter(cfg.TrustedPrefixes())
	src, err := openSource(args.Path, trust, log)
	if err != nil {
		log.WithError(err).WithField("path", args.Path).Error("cannot open input")
		msg := err.Error()
		if container.IsNotFound(err) {
			msg = "file not found: " + args.Path
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+msg))
		return 1
	}
	defer src.Close()
	log.WithField("path", args.Path).WithField("kind", src.Kind().String()).Info("opened input")

	// Start TUI
	m := newModel(src, log, cfg.Viewer.Width, len(trust.Prefixes()))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	return 0
}
