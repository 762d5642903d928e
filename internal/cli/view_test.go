package cli

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/pedigree"
	"github.com/matzehuels/pedigree/pkg/store/memory"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestViewModel(t *testing.T) *viewModel {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	for _, r := range []*animal.Record{
		{ID: "dam", Identifier: "D-1", Name: "Daisy", Gender: animal.Female, Active: true},
		{ID: "calf", Identifier: "C-1", Name: "Bessie", Gender: animal.Female, MotherID: "dam", Active: true},
	} {
		if err := s.InsertAnimal(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	return newViewModel(ctx, pedigree.NewLoader(pedigree.NewResolver(s, pedigree.Options{})), nil, "calf", 3)
}

// deliver runs cmd and feeds its message back into the model.
func deliver(t *testing.T, m *viewModel, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func TestViewModelLoad(t *testing.T) {
	m := newTestViewModel(t)
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("initial view should show loading:\n%s", m.View())
	}

	deliver(t, m, m.Init())
	if m.tree == nil || m.tree.ID != "calf" {
		t.Fatalf("tree = %+v, want calf", m.tree)
	}
	view := m.View()
	for _, want := range []string{"Bessie", "Daisy", "generations 3", "zoom 100%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewModelZoomKeys(t *testing.T) {
	m := newTestViewModel(t)

	tests := []struct {
		key  string
		want float64
	}{
		{"+", 1.1},
		{"=", 1.2},
		{"-", 1.1},
		{"_", 1.0},
		{"-", 0.9},
		{"0", 1.0},
	}
	for _, tt := range tests {
		m.Update(runeKey(tt.key))
		if got := m.zoom.Scale(); got != tt.want {
			t.Errorf("after %q: scale = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestViewModelHelp(t *testing.T) {
	m := newTestViewModel(t)

	m.Update(runeKey("?"))
	if !m.help || !strings.Contains(m.View(), "toggle this help") {
		t.Fatal("? should open help")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.help {
		t.Error("esc should close help")
	}

	m.Update(runeKey("?"))
	m.Update(overlayClosedMsg{})
	if m.help {
		t.Error("closing the overlay should close help")
	}
}

func TestViewModelGenerationsResetZoom(t *testing.T) {
	m := newTestViewModel(t)
	deliver(t, m, m.Init())

	m.Update(runeKey("+"))
	_, cmd := m.Update(runeKey("1"))
	if m.generations != 1 {
		t.Fatalf("generations = %d, want 1", m.generations)
	}
	deliver(t, m, cmd)

	if got := m.zoom.Scale(); got != 1.0 {
		t.Errorf("scale after reload = %v, want 1", got)
	}
	if n := len(m.tree.Parents()); n != 1 {
		t.Errorf("root parents = %d, want 1", n)
	}

	if _, cmd := m.Update(runeKey("1")); cmd != nil {
		t.Error("pressing the current generation count should not reload")
	}
}

func TestViewModelIgnoresSupersededLoad(t *testing.T) {
	m := newTestViewModel(t)
	deliver(t, m, m.Init())
	tree := m.tree

	m.Update(loadedMsg{err: pedigree.ErrSuperseded})
	if m.tree != tree || m.loadErr != nil {
		t.Error("superseded load should leave the model untouched")
	}
}

func TestViewModelFailedLoadClearsTree(t *testing.T) {
	m := newTestViewModel(t)
	deliver(t, m, m.Init())

	m.Update(loadedMsg{err: errors.New(errors.ErrCodeNotFound, "animal ghost not found")})
	if m.tree != nil {
		t.Error("failed load should clear the tree")
	}
	if !strings.Contains(m.View(), "animal ghost not found") {
		t.Errorf("view should show the failure:\n%s", m.View())
	}
}

func TestViewModelSurfaceMessages(t *testing.T) {
	m := newTestViewModel(t)

	var sent []tea.Msg
	s := &teaSurface{send: func(msg tea.Msg) { sent = append(sent, msg) }}
	s.ShowLoading("Exporting PNG")
	s.HideLoading()
	s.Success("Saved pedigree.png")
	s.Failure(stderrors.New("disk full"))

	m.Update(sent[0])
	if !strings.Contains(m.View(), "Exporting PNG") {
		t.Errorf("view should show loading text:\n%s", m.View())
	}
	for _, msg := range sent[1:3] {
		m.Update(msg)
	}
	if m.loading != "" || !strings.Contains(m.View(), "Saved pedigree.png") {
		t.Errorf("view should show success:\n%s", m.View())
	}
	m.Update(sent[3])
	if !m.notice.err || m.notice.text != "disk full" {
		t.Errorf("notice = %+v, want failure", m.notice)
	}

	// Unattached surfaces drop messages.
	(&teaSurface{}).Success("ignored")
}

func TestViewModelQuit(t *testing.T) {
	m := newTestViewModel(t)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
