// Command drawconquer runs the Draw-And-Conquer matchmaker and game
// servers in a single process: two hand-rolled WebSocket listeners, two
// background watchdogs, and a debug HTTP echo endpoint.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
