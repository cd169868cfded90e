// The main package for the scholar-crawler executable.
package main

import (
	"github.com/JakeFAU/scholar-crawler/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
