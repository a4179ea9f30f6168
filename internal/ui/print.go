package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// Out is where the menu and messages are written.
var Out io.Writer = os.Stdout

var in = bufio.NewReader(os.Stdin)

func PrintBanner() {
	c := color.New(color.FgCyan)
	c.Fprintln(Out, figure.NewFigure("SAMPLE", "isometric1", true).String())
	c.Fprintln(Out, figure.NewFigure("EXTRACTOR", "isometric1", true).String())
	fmt.Fprintln(Out)
}

func PrintWarning(message string) {
	fmt.Fprintf(Out, "%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Fprintf(Out, "%s%s%s\n", ColorYellow, message, ColorReset)
}

func PrintError(message string) {
	fmt.Fprintf(Out, "\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

func PrintSuccess(message string) {
	fmt.Fprintf(Out, "\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo writes without a trailing newline so it can serve as a prompt.
func PrintInfo(message string) {
	fmt.Fprintf(Out, "%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString prompts and returns the trimmed line.
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, _ := in.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadList splits a comma or space separated answer.
func ReadList(prompt string) []string {
	return strings.FieldsFunc(ReadString(prompt), func(r rune) bool { return r == ',' || r == ' ' })
}

func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadIntDefault returns fallback for an empty answer.
func ReadIntDefault(prompt string, fallback int) (int, error) {
	input := ReadString(fmt.Sprintf("%s [%d]: ", prompt, fallback))
	if input == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

func ReadFloat(prompt string) (float64, error) {
	input := ReadString(prompt)
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadDate reads a YYYYMMDD date.
func ReadDate(prompt string) (string, error) {
	input := ReadString(prompt)
	if len(input) != 8 || strings.Trim(input, "0123456789") != "" {
		return "", fmt.Errorf("invalid date format: %s. Please use YYYYMMDD", input)
	}
	return input, nil
}
