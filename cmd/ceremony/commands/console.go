package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/xerrors"

	"ceremony/internal/domain"
	"ceremony/internal/validation"
)

const consoleHelp = `commands:
  answer left|right|none [n]   answer the current flip (or flip n)
  report [n]                   report irrelevant keywords (long session)
  approve [1-5] [n]            clear a report, optionally grading the flip
  fav [n]                      toggle favorite
  next | prev | pick <n>       move between flips
  submit                       submit the current session
  retry                        retry a failed submission
  cancel                       stop the run
  show                         print the current state
`

var errUnknownCommand = xerrors.New("unknown command, try help")

// engine is the part of *validation.Engine the console drives.
type engine interface {
	Send(ctx context.Context, ev validation.Event) error
	Views() <-chan validation.View
}

// console feeds input lines to the engine and prints its views.
type console struct {
	e    engine
	out  io.Writer
	last validation.View
}

func (c *console) run(ctx context.Context, in io.Reader, done <-chan error) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.print(true)
	for {
		select {
		case err := <-done:
			c.drain()
			return err
		case v := <-c.e.Views():
			prev := c.last
			c.last = v
			if changed(prev, v) {
				c.print(false)
			}
		case line, ok := <-lines:
			if !ok {
				// stdin closed: keep running until the engine stops
				lines = nil
				continue
			}
			c.exec(ctx, line)
		}
	}
}

func (c *console) exec(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "help" {
		fmt.Fprint(c.out, consoleHelp)
		return
	}
	ev, show, err := parseCommand(fields, c.last)
	switch {
	case err != nil:
		fmt.Fprintln(c.out, "error:", err)
	case show:
		c.print(true)
	default:
		if err := c.e.Send(ctx, ev); err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}
	}
}

// drain prints the final view if one is pending.
func (c *console) drain() {
	select {
	case v := <-c.e.Views():
		c.last = v
	default:
	}
	c.print(false)
}

// activeSession is the session commands apply to by default.
func activeSession(v validation.View) domain.SessionKind {
	if v.Phase == validation.PhaseLong {
		return domain.LongSession
	}
	return domain.ShortSession
}

func sessionView(v validation.View, kind domain.SessionKind) validation.SessionView {
	if kind == domain.LongSession {
		return v.Long
	}
	return v.Short
}

// parseCommand maps console words onto an engine event. Flip numbers are
// 1-based positions among the visible flips.
func parseCommand(fields []string, v validation.View) (ev validation.Event, show bool, err error) {
	if len(fields) == 0 {
		return nil, true, nil
	}
	kind := activeSession(v)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "show":
		return nil, true, nil
	case "answer", "a":
		if len(args) == 0 {
			return nil, false, xerrors.New("answer needs left, right or none")
		}
		ans, err := parseAnswer(args[0])
		if err != nil {
			return nil, false, err
		}
		hash, err := pickFlip(v, kind, args[1:])
		if err != nil {
			return nil, false, err
		}
		return validation.AnswerFlip{Session: kind, Hash: hash, Answer: ans}, false, nil
	case "report":
		hash, err := pickFlip(v, domain.LongSession, args)
		if err != nil {
			return nil, false, err
		}
		return validation.ReportWords{Hash: hash}, false, nil
	case "approve":
		grade := domain.GradeNone
		if len(args) > 0 {
			g, err := strconv.Atoi(args[0])
			if err != nil || g < 0 || g > 5 {
				return nil, false, xerrors.Errorf("grade %q: want 0-5", args[0])
			}
			if g > 0 {
				grade = domain.Grade1 + domain.Grade(g-1)
			}
			args = args[1:]
		}
		hash, err := pickFlip(v, domain.LongSession, args)
		if err != nil {
			return nil, false, err
		}
		return validation.ApproveWords{Hash: hash, Grade: grade}, false, nil
	case "fav":
		hash, err := pickFlip(v, kind, args)
		if err != nil {
			return nil, false, err
		}
		return validation.Favorite{Session: kind, Hash: hash}, false, nil
	case "next", "n":
		return validation.Navigate{Session: kind, Delta: 1}, false, nil
	case "prev", "p":
		return validation.Navigate{Session: kind, Delta: -1}, false, nil
	case "pick":
		if len(args) != 1 {
			return nil, false, xerrors.New("pick needs a flip number")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, false, xerrors.Errorf("flip number %q: %w", args[0], err)
		}
		return validation.Navigate{Session: kind, Index: n - 1, Absolute: true}, false, nil
	case "submit":
		return validation.Submit{Session: kind}, false, nil
	case "retry":
		if v.Short.State == validation.StateFailed {
			kind = domain.ShortSession
		} else if v.Long.State == validation.StateFailed {
			kind = domain.LongSession
		}
		return validation.RetrySubmit{Session: kind}, false, nil
	case "cancel":
		return validation.Cancel{}, false, nil
	}
	return nil, false, errUnknownCommand
}

func parseAnswer(s string) (domain.Answer, error) {
	switch strings.ToLower(s) {
	case "l", "left":
		return domain.AnswerLeft, nil
	case "r", "right":
		return domain.AnswerRight, nil
	case "none", "clear", "-":
		return domain.AnswerNone, nil
	}
	return domain.AnswerNone, xerrors.Errorf("answer %q: want left, right or none", s)
}

// pickFlip resolves an optional flip number, defaulting to the current flip.
func pickFlip(v validation.View, kind domain.SessionKind, args []string) (domain.FlipHash, error) {
	sv := sessionView(v, kind)
	idx := sv.Current
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", xerrors.Errorf("flip number %q: %w", args[0], err)
		}
		idx = n - 1
	}
	if idx < 0 || idx >= len(sv.Flips) {
		return "", xerrors.Errorf("no flip %d in the %s session", idx+1, kind)
	}
	return sv.Flips[idx].Hash, nil
}

func changed(a, b validation.View) bool {
	return a.Phase != b.Phase ||
		a.Error != b.Error ||
		a.Short.State != b.Short.State || a.Long.State != b.Long.State ||
		a.Short.Solvable != b.Short.Solvable || a.Long.Solvable != b.Long.Solvable ||
		a.Short.Current != b.Short.Current || a.Long.Current != b.Long.Current
}

func (c *console) print(full bool) {
	v := c.last
	fmt.Fprintf(c.out, "[epoch %d] phase=%s short=%s %d/%d long=%s %d/%d\n",
		v.Epoch, v.Phase,
		v.Short.State, v.Short.Answered, v.Short.Solvable,
		v.Long.State, v.Long.Answered, v.Long.Solvable)
	if v.Error != "" {
		fmt.Fprintln(c.out, "last error:", v.Error)
	}
	if !full {
		return
	}
	kind := activeSession(v)
	sv := sessionView(v, kind)
	for i, f := range sv.Flips {
		marker := " "
		if i == sv.Current {
			marker = ">"
		}
		line := fmt.Sprintf("%s %2d %-10s %-6s", marker, i+1, f.Status, f.Answer)
		if f.Keywords != nil {
			line += fmt.Sprintf(" words=%d,%d grade=%d", f.Keywords.Words[0], f.Keywords.Words[1], f.Grade)
		}
		if f.Favorite {
			line += " *"
		}
		fmt.Fprintf(c.out, "%s  %s\n", line, f.Hash)
	}
}
