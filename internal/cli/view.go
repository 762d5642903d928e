package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/artifact"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/export"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/render/presentation"
)

// viewCommand creates the interactive pedigree viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		generations int
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "view <animal-id>",
		Short: "Browse a pedigree interactively",
		Long: `Browse the ancestry of an animal in the terminal.

Keys: +/- zoom, 0 reset zoom, 1-5 generations, p/d/j export PNG/PDF/JSON,
? help, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg, err := c.openRegistry(ctx, cfg)
			if err != nil {
				return err
			}
			defer reg.Close()

			sink, err := artifact.NewDirSink(outDir)
			if err != nil {
				return err
			}
			surface := &teaSurface{}
			deps, err := c.newPipeline(ctx, cfg, surface, sink, false, nil)
			if err != nil {
				return err
			}
			defer deps.Close()

			m := newViewModel(ctx, pedigree.NewLoader(c.newResolver(reg)), deps.Pipeline, args[0], generations)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			surface.send = p.Send
			_, err = p.Run()
			if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&generations, "generations", "g", pedigree.DefaultGenerations, "initial generations (1-5)")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for exported files")

	return cmd
}

// =============================================================================
// Surface
// =============================================================================

type (
	overlayClosedMsg struct{}
	loadingMsg       struct{ text string }
	noticeMsg        struct {
		text string
		err  bool
	}
)

// teaSurface forwards export progress into the bubbletea event loop.
type teaSurface struct {
	send func(tea.Msg)
}

func (s *teaSurface) post(msg tea.Msg) {
	if s.send != nil {
		s.send(msg)
	}
}

func (s *teaSurface) CloseOverlay()           { s.post(overlayClosedMsg{}) }
func (s *teaSurface) ShowLoading(text string) { s.post(loadingMsg{text: text}) }
func (s *teaSurface) HideLoading()            { s.post(loadingMsg{}) }
func (s *teaSurface) Success(text string)     { s.post(noticeMsg{text: text}) }
func (s *teaSurface) Failure(err error)       { s.post(noticeMsg{text: errors.UserMessage(err), err: true}) }

// =============================================================================
// Model
// =============================================================================

type (
	loadedMsg struct {
		tree *pedigree.Node
		err  error
	}
	exportDoneMsg struct {
		artifact *artifact.Artifact
		err      error
	}
)

type viewModel struct {
	ctx      context.Context
	loader   *pedigree.Loader
	exporter *export.Pipeline
	rootID   string

	generations int
	zoom        presentation.ViewState
	tree        *pedigree.Node
	loadErr     error
	reloading   bool
	help        bool
	loading     string
	notice      noticeMsg
}

func newViewModel(ctx context.Context, loader *pedigree.Loader, exporter *export.Pipeline, rootID string, generations int) *viewModel {
	return &viewModel{
		ctx:         ctx,
		loader:      loader,
		exporter:    exporter,
		rootID:      rootID,
		generations: pedigree.ClampGenerations(generations),
		reloading:   true,
	}
}

func (m *viewModel) Init() tea.Cmd {
	return m.load()
}

func (m *viewModel) load() tea.Cmd {
	ctx, loader, rootID, generations := m.ctx, m.loader, m.rootID, m.generations
	return func() tea.Msg {
		tree, err := loader.Load(ctx, rootID, generations)
		return loadedMsg{tree: tree, err: err}
	}
}

func (m *viewModel) export(format string) tea.Cmd {
	ctx, exporter, tree := m.ctx, m.exporter, m.loader.Current()
	return func() tea.Msg {
		a, err := exporter.Export(ctx, format, tree)
		return exportDoneMsg{artifact: a, err: err}
	}
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case loadedMsg:
		if stderrors.Is(msg.err, pedigree.ErrSuperseded) {
			return m, nil
		}
		m.reloading = false
		m.tree, m.loadErr = msg.tree, msg.err
		m.zoom.Reset()

	case overlayClosedMsg:
		m.help = false
	case loadingMsg:
		m.loading = msg.text
	case noticeMsg:
		m.notice = msg
	case exportDoneMsg:
		if msg.err == nil && msg.artifact.Location != "" {
			m.notice = noticeMsg{text: fmt.Sprintf("Exported %s", msg.artifact.Location)}
		}
	}
	return m, nil
}

func (m *viewModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "?", "h":
		m.help = !m.help
	case "esc":
		m.help = false
	case "+", "=":
		m.zoom.Zoom(presentation.ZoomStep)
	case "-", "_":
		m.zoom.Zoom(-presentation.ZoomStep)
	case "0":
		m.zoom.Reset()
	case "1", "2", "3", "4", "5":
		g := int(key[0] - '0')
		if g == m.generations && m.tree != nil {
			return nil
		}
		m.generations = g
		m.reloading = true
		return m.load()
	case "p":
		return m.export(render.FormatPNG)
	case "d":
		return m.export(render.FormatPDF)
	case "j":
		return m.export(render.FormatJSON)
	}
	return nil
}

// =============================================================================
// View
// =============================================================================

var (
	viewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewBarStyle    = lipgloss.NewStyle().Foreground(colorGray)
	viewHelpStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(1, 2)
	viewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

const viewHelp = `Keys

  +  =     zoom in
  -        zoom out
  0        reset zoom
  1 … 5    generations to show
  p        export PNG
  d        export PDF
  j        export JSON
  ?        toggle this help
  q        quit`

func (m *viewModel) View() string {
	var b strings.Builder

	b.WriteString(viewHeaderStyle.Render("Pedigree"))
	b.WriteString(viewBarStyle.Render(fmt.Sprintf("  generations %d · zoom %.0f%%", m.generations, m.zoom.Scale()*100)))
	b.WriteString("\n\n")

	switch {
	case m.help:
		b.WriteString(viewHelpStyle.Render(viewHelp))
	case m.reloading && m.tree == nil:
		b.WriteString(StyleDim.Render("Loading…"))
	case m.loadErr != nil:
		b.WriteString(viewErrorStyle.Render(errors.UserMessage(m.loadErr)))
	case m.tree == nil:
		b.WriteString(StyleDim.Render("No pedigree loaded"))
	default:
		b.WriteString(treeText(presentation.Build(m.tree, m.tree.Identifier), m.zoom.Scale(), false))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading != "":
		b.WriteString(statusLine(statusBusy, StyleDim.Render(m.loading)))
	case m.notice.text != "" && m.notice.err:
		b.WriteString(statusLine(statusFailed, m.notice.text))
	case m.notice.text != "":
		b.WriteString(statusLine(statusOK, m.notice.text))
	default:
		b.WriteString(StyleDim.Render("? help · q quit"))
	}
	return b.String()
}
