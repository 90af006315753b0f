// Command wdctl runs Wikidot page operations from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if err := newRootCmd(defaultClientFactory).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
