// Command gopool drives worker pools from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp()
	err := a.rootCmd().Execute()
	if cerr := a.close(); cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
