package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiBlue  = "\x1b[34m"
	ansiReset = "\x1b[0m"
)

// printSection writes a titled section header, colorized when stdout is
// a terminal.
func printSection(out io.Writer, title string) {
	rule := strings.Repeat("-", len(title))
	if shouldColorize(out) {
		title = ansiBlue + title + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, rule)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value*100, 'f', 1, 64) + "%"
}
