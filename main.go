// The main package for the apiscout executable.
package main

import (
	"github.com/apiscout/apiscout/cmd"
)

func main() {
	cmd.Execute()
}
