// Command bfa is the Taskflow backend-for-frontend: the dashboard API and
// the callback notifier (serve), plus an offline run of the visibility
// engine (filter).
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
