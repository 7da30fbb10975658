package main

import (
	"os"

	"github.com/kevinraymond/homeschool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
