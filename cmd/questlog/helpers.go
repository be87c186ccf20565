package main

import (
	"os"

	"github.com/mattn/go-isatty"
)

func consoleIsInteractive(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
