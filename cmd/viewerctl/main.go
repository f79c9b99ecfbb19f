package main

import (
	"fmt"
	"os"

	"viewerd/internal/viewerctl"
)

func main() {
	if err := viewerctl.BuildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
