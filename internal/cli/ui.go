package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pedigree/pkg/animal"
)

// Terminal palette (ANSI 256).
var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorPink  = lipgloss.Color("211")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)

	styleLabel    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleSelected = lipgloss.NewStyle().Bold(true).Underline(true)
)

// genderStyle returns the color used for g.
func genderStyle(g animal.Gender) lipgloss.Style {
	switch g {
	case animal.Female:
		return lipgloss.NewStyle().Foreground(colorPink)
	case animal.Male:
		return lipgloss.NewStyle().Foreground(colorBlue)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}

// status is the kind of a one-line outcome message.
type status int

const (
	statusInfo status = iota
	statusOK
	statusFailed
	statusBusy
)

var statusMarks = map[status]string{
	statusInfo:   lipgloss.NewStyle().Foreground(colorGray).Render("›"),
	statusOK:     lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	statusFailed: lipgloss.NewStyle().Foreground(colorRed).Render("✗"),
	statusBusy:   lipgloss.NewStyle().Foreground(colorCyan).Render("⠿"),
}

// statusLine renders msg behind the mark for kind.
func statusLine(kind status, msg string) string {
	return statusMarks[kind] + " " + msg
}

func fprintStatus(w io.Writer, kind status, format string, args ...any) {
	fmt.Fprintln(w, statusLine(kind, fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { fprintStatus(os.Stdout, statusOK, format, args...) }
func printInfo(format string, args ...any)    { fprintStatus(os.Stdout, statusInfo, format, args...) }

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the location of a written artifact.
func printFile(location string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(location))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printStats summarizes a resolved pedigree and whether its artifact came
// from the cache.
func printStats(animals, generations int, cached bool) {
	origin := StyleDim.Render("fresh")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Println("  " + strings.Join([]string{
		StyleDim.Render(fmt.Sprintf("%d animals", animals)),
		StyleDim.Render(fmt.Sprintf("%d generations", generations)),
		origin,
	}, sep))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
