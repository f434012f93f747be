package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/roomweaver/pkg/pipeline"
)

// =============================================================================
// Palette & Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleNumber    = StyleHighlight
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = StyleHighlight
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// statusIcons pairs each status icon with its colour.
var statusIcons = map[string]lipgloss.Style{
	iconSuccess: StyleSuccess,
	iconError:   lipgloss.NewStyle().Foreground(colorRed),
	iconWarning: StyleWarning,
	iconInfo:    lipgloss.NewStyle().Foreground(colorGray),
}

// =============================================================================
// Status Lines
// =============================================================================

func printStatus(icon, msg string) {
	fmt.Println(statusIcons[icon].Render(icon) + " " + msg)
}

func printSuccess(format string, args ...any) { printStatus(iconSuccess, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { printStatus(iconError, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { printStatus(iconInfo, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	printStatus(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints room, connection and floor counts on one line, followed
// by whether the layout came from the cache.
func printStats(st pipeline.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d rooms", st.Rooms),
		fmt.Sprintf("%d connections", st.Connections),
		fmt.Sprintf("%d floors", st.Floors),
	}
	if st.GenerateTime > 0 {
		parts = append(parts, st.GenerateTime.Round(time.Millisecond).String())
	}
	origin := StyleDim.Render(iconFresh)
	if cached {
		origin = StyleSuccess.Render(iconCached)
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")) + sep + origin)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
