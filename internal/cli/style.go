package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// styles decorates section headers when writing to a terminal.
type styles struct {
	header lipgloss.Style
	errMsg lipgloss.Style
	plain  bool
}

func newStyles(w io.Writer) styles {
	f, ok := w.(*os.File)
	plain := !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		errMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		plain:  plain,
	}
}

func (s styles) Header(text string) string {
	if s.plain {
		return text
	}
	return s.header.Render(text)
}

func (s styles) Error(text string) string {
	if s.plain {
		return text
	}
	return s.errMsg.Render(text)
}
