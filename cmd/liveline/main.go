package main

import (
	"fmt"
	"os"

	"github.com/henri123lemoine/liveline/internal/cmd"
	"github.com/henri123lemoine/liveline/internal/debug"
)

func main() {
	err := cmd.Execute()
	debug.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
