package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/imrishuroy/dispatch-board/internal/board"
	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/reconciler"
)

var errQuit = errors.New("quit")

const helpText = `Commands:
  list                     show the board
  details                  show the board with full profiles
  urgency <id|#> <level>   set High, Medium, Low or unset
  archive <id|#>           hide a card on this dashboard
  undo                     restore the last archived card
  help                     this text
  quit                     leave the session
`

// Session is one operator's terminal view of a board. Output from the poll
// loop and from commands is serialised on out.
type Session struct {
	name  string
	board *board.Board

	mu  sync.Mutex
	out io.Writer
}

func NewSession(name string, b *board.Board, out io.Writer) *Session {
	return &Session{name: name, board: b, out: out}
}

// Notify prints a transient notice.
func (s *Session) Notify(n reconciler.Notice) {
	s.printf("! %s\n", n.Message)
}

// Changed redraws the board after a poll created cards.
func (s *Session) Changed(added int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "+ %d new dispatch(es) on %s\n", added, s.name)
	_ = s.board.Render(s.out, false)
}

// Exec runs a single command line. It returns errQuit when the operator
// asked to leave.
func (s *Session) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "list", "ls":
		return s.render(false)
	case "details", "show":
		return s.render(true)
	case "urgency", "u":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: urgency <id|#> <level>")
		}
		id, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		level := ""
		if len(args) == 2 {
			level = args[1]
		}
		u, err := dispatch.ParseUrgency(level)
		if err != nil {
			return err
		}
		if err := s.board.SetUrgency(id, u); err != nil {
			return err
		}
		return s.render(false)
	case "archive", "a":
		if len(args) != 1 {
			return errors.New("usage: archive <id|#>")
		}
		id, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		if err := s.board.Archive(id); err != nil {
			return err
		}
		s.printf("Dispatch archived. Type 'undo' to restore it.\n")
		return s.render(false)
	case "undo":
		if _, ok := s.board.Undo(); !ok {
			s.printf("Nothing to undo.\n")
			return nil
		}
		return s.render(false)
	case "help", "?":
		s.printf("%s", helpText)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

// resolve accepts either a card id or its 1-based position on the board.
func (s *Session) resolve(ref string) (string, error) {
	if _, ok := s.board.Card(ref); ok {
		return ref, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		visible := s.board.Visible()
		if n >= 1 && n <= len(visible) {
			return visible[n-1].ID(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", board.ErrUnknownCard, ref)
}

func (s *Session) render(detailed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Render(s.out, detailed)
}

func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
