// The main package for the viddisc executable.
package main

import (
	"os"

	"github.com/bravforcode/vibescity-live-sub000/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
