// The main package for the poligonos executable.
package main

import (
	"github.com/begonlabs/poligonos/cmd"
)

func main() {
	cmd.Execute()
}
