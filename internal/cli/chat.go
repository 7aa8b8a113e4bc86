package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rcliao/cad-agent/internal/agent"
	"github.com/rcliao/cad-agent/internal/journal"
	"github.com/rcliao/cad-agent/internal/llm"
	"github.com/rcliao/cad-agent/internal/model"
	"github.com/rcliao/cad-agent/internal/prompt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive designer",
		Long:  "Interactive loop. Commands: state, reset, export, history, quit/exit/bye. Anything else is a design request.",
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	chat, err := llm.NewFromConfig(cfg, prompt.System)
	if err != nil {
		exitErr("start session", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &repl{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}

	var opts []agent.Option
	if cfg.Journal.Enabled {
		j, err := openJournal()
		if err != nil {
			exitErr("open journal", err)
		}
		defer j.Close()
		opts = append(opts, agent.WithRecorder(j))
		r.history = j
	}

	r.sess = agent.New(ctx, chat, opts...)
	r.style = newStyles(r.out)
	r.run(ctx)
}

// turnLister is the part of the journal the loop needs for "history".
type turnLister interface {
	ListTurns(ctx context.Context, p journal.ListParams) ([]model.Turn, error)
}

type repl struct {
	sess    *agent.Session
	history turnLister
	last    []model.Patch
	in      io.Reader
	out     io.Writer
	style   styles
}

var rule = strings.Repeat("=", 60)

func (r *repl) banner() {
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, r.style.Header("CAD Agent - Natural Language to CAD DSL"))
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out, "Describe shapes in natural language. Type 'quit' to exit.")
	fmt.Fprintln(r.out, "Commands: 'state' - show current design, 'reset' - start over,")
	fmt.Fprintln(r.out, "          'export' - last patches as JSON, 'history' - past turns")
	if m := r.sess.Model(); m != "" {
		fmt.Fprintf(r.out, "Model: %s\n", m)
	}
	fmt.Fprintln(r.out, rule)
	fmt.Fprintln(r.out)
}

// run reads one request per line until quit, end of input, or ctx is cancelled.
func (r *repl) run(ctx context.Context) {
	r.banner()

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-readCtx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "You: ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		case line, ok = <-lines:
			if !ok {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
		}
		if r.handle(ctx, line) {
			return
		}
	}
}

// handle processes one input line and reports whether the loop should stop.
func (r *repl) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	switch strings.ToLower(input) {
	case "quit", "exit", "bye":
		fmt.Fprintln(r.out, "Goodbye!")
		return true
	case "state":
		r.showState()
		return false
	case "reset":
		r.sess.Reset(ctx)
		r.last = nil
		fmt.Fprintln(r.out, r.style.Header("[Design reset - starting fresh]"))
		fmt.Fprintln(r.out)
		return false
	case "history":
		r.showHistory(ctx)
		return false
	case "export":
		r.showExport()
		return false
	}

	patches, err := r.sess.Generate(ctx, input)
	if err != nil {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Error(fmt.Sprintf("[Error: %v]", err)))
		return false
	}

	if len(patches) == 0 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Header("[No valid patches generated]"))
		return false
	}

	r.last = patches
	fmt.Fprintf(r.out, "\n%s\n", r.style.Header("[Generated Patches]"))
	for _, p := range patches {
		fmt.Fprintln(r.out, p.String())
	}
	fmt.Fprintln(r.out)
	return false
}

func (r *repl) showState() {
	state := r.sess.State()
	if state.Len() == 0 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Header("[No features in current design]"))
		return
	}
	out, err := state.Indent()
	if err != nil {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Error(fmt.Sprintf("[Error: %v]", err)))
		return
	}
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", r.style.Header("[Current Design State]"), out)
}

func (r *repl) showExport() {
	if len(r.last) == 0 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Header("[No patches to export]"))
		return
	}
	out, err := r.sess.ExportPatchesJSON(r.last)
	if err != nil {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Error(fmt.Sprintf("[Error: %v]", err)))
		return
	}
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", r.style.Header("[Exported Patches]"), out)
}

func (r *repl) showHistory(ctx context.Context) {
	if r.history == nil || r.sess.SessionID() == "" {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Header("[Journal disabled]"))
		return
	}
	turns, err := r.history.ListTurns(ctx, journal.ListParams{SessionID: r.sess.SessionID(), Limit: 50})
	if err != nil {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Error(fmt.Sprintf("[Error: %v]", err)))
		return
	}
	if len(turns) == 0 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.style.Header("[No turns in this session]"))
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.style.Header("[Session History]"))
	// Oldest first reads naturally in a conversation.
	for i := len(turns) - 1; i >= 0; i-- {
		fmt.Fprintln(r.out, formatTurn(turns[i]))
	}
	fmt.Fprintln(r.out)
}

func formatTurn(t model.Turn) string {
	status := fmt.Sprintf("%d patches", len(t.Patches))
	if t.Error != "" {
		status = "error: " + t.Error
	} else if t.Skipped > 0 {
		status += fmt.Sprintf(", %d skipped", t.Skipped)
	}
	return fmt.Sprintf("#%d %s (%s)", t.Seq, t.Request, status)
}
