package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/ukydev/walkroutes/internal/canvas"
	"golang.org/x/term"
)

// cancelAnswer abandons a prompt.
const cancelAnswer = "."

// terminal renders canvas updates as text lines and answers dialogs from the
// same input stream the command loop reads.
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
	fd  int
	tty bool
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	t := &terminal{in: bufio.NewScanner(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd, t.tty = int(f.Fd()), true
	}
	return t
}

// readLine returns the next input line; false means input is closed.
func (t *terminal) readLine() (string, bool) {
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *terminal) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) AddMarker(color canvas.MarkerColor, p orb.Point) {
	t.printf("marker %s at %.6f,%.6f\n", color, p.Lat(), p.Lon())
}

func (t *terminal) ClearMarkers() { t.printf("markers cleared\n") }

func (t *terminal) DrawPath(g orb.Geometry) {
	n := 0
	if ls, ok := g.(orb.LineString); ok {
		n = len(ls)
	}
	t.printf("path drawn (%d points)\n", n)
}

func (t *terminal) ClearPath() { t.printf("path cleared\n") }

func (t *terminal) ShowInfo(info *canvas.Info) {
	if info == nil {
		return
	}
	t.printf("%s\n", info)
}

func (t *terminal) FlyTo(center orb.Point, zoom float64) {
	t.printf("view centered on %.6f,%.6f zoom %g\n", center.Lat(), center.Lon(), zoom)
}

func (t *terminal) Alert(msg string) { t.printf("! %s\n", msg) }

// Prompt shows def in brackets. Answering "." or closing input cancels.
func (t *terminal) Prompt(msg, def string) (string, bool) {
	if def != "" {
		t.printf("%s [%s] (%s to cancel) ", msg, def, cancelAnswer)
	} else {
		t.printf("%s (%s to cancel) ", msg, cancelAnswer)
	}
	answer, ok := t.readLine()
	if !ok || answer == cancelAnswer {
		return "", false
	}
	return answer, true
}

// PromptSecret reads a line without echo when input is a terminal.
func (t *terminal) PromptSecret(msg string) (string, bool) {
	t.printf("%s ", msg)
	if !t.tty {
		return t.readLine()
	}
	secret, err := term.ReadPassword(t.fd)
	t.printf("\n")
	if err != nil {
		return "", false
	}
	return string(secret), true
}

func (t *terminal) Confirm(msg string) bool {
	t.printf("%s [y/N] ", msg)
	answer, ok := t.readLine()
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
