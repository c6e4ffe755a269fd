// Command aguda is the AGUDA compiler's CLI entry point.
package main

import (
	"os"

	"github.com/agu-lang/aguda-go/cmd/aguda/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
