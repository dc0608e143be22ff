package main

import (
	"fmt"
	"os"

	"github.com/Dualog-students/GridFSCleaner/cmd/gridfs-cleaner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
