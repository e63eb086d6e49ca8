package main

import (
	"fmt"
	"os"
)

// ============================================================================
// STEPWISE CLI — spoken or typed algebra, solved step by step
// ============================================================================

const version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
