package launcher

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var diagPrefix = color.New(color.FgRed, color.Bold)

func printDiagnostic(w io.Writer, err error) {
	prefix := diagPrefix
	if isTerminal(w) && os.Getenv("NO_COLOR") == "" {
		prefix.EnableColor()
	} else {
		prefix.DisableColor()
	}
	fmt.Fprintf(w, "%s %v\n", prefix.Sprint("launch:"), err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
