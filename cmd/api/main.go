// @title           Todo API
// @version         1.0
// @description     In-memory todo API with filtering and statistics.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
