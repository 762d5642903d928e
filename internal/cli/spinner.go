package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/export"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line message until stopped or until its context
// ends. stop is safe to call more than once.
type spinner struct {
	w       io.Writer
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{w: w, message: message, cancel: cancel, stopped: make(chan struct{})}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := StyleHighlight.Render(spinnerFrames[i%len(spinnerFrames)])
			fmt.Fprintf(s.w, "\r%s %s", frame, StyleDim.Render(s.message))
		}
	}
}

// stop ends the animation and waits for the line to be cleared.
func (s *spinner) stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// spinnerSurface reports export progress on a plain terminal. The spinner is
// the loading indicator and the outcome line replaces it.
type spinnerSurface struct {
	ctx    context.Context
	w      io.Writer
	active *spinner
}

var _ export.Surface = (*spinnerSurface)(nil)

func newSpinnerSurface(ctx context.Context) *spinnerSurface {
	return &spinnerSurface{ctx: ctx, w: os.Stderr}
}

// CloseOverlay does nothing; a plain terminal has no overlays.
func (s *spinnerSurface) CloseOverlay() {}

func (s *spinnerSurface) ShowLoading(message string) {
	s.HideLoading()
	s.active = startSpinner(s.ctx, s.w, message)
}

func (s *spinnerSurface) HideLoading() {
	if s.active != nil {
		s.active.stop()
		s.active = nil
	}
}

func (s *spinnerSurface) Success(message string) {
	s.HideLoading()
	fprintStatus(s.w, statusOK, "%s", message)
}

func (s *spinnerSurface) Failure(err error) {
	s.HideLoading()
	fprintStatus(s.w, statusFailed, "%s", errors.UserMessage(err))
}
