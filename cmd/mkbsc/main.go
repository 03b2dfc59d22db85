// Command mkbsc iterates the knowledge-based subset construction over a
// game definition until the epistemic hierarchy reaches its fixed
// point, with optional DOT export and run archiving.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
