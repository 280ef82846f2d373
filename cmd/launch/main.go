// Command launch starts the Python application that lives next to it,
// activating its virtual environment first when one is present. Every
// argument is forwarded to the application untouched.
package main

import (
	"os"

	"github.com/brandonbloom/launch/internal/launcher"
)

func main() {
	os.Exit(launcher.Main(os.Args[1:]))
}
