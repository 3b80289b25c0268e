package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successBanner = color.New(color.FgGreen, color.Bold)
	failureBanner = color.New(color.FgRed, color.Bold)
	noticeText    = color.New(color.FgYellow)
)

func successf(format string, args ...interface{}) {
	_, _ = successBanner.Printf(format+"\n", args...)
}

func failf(format string, args ...interface{}) {
	_, _ = failureBanner.Fprintf(os.Stderr, format+"\n", args...)
}

func noticef(format string, args ...interface{}) {
	_, _ = noticeText.Printf(format+"\n", args...)
}

var stdin = bufio.NewReader(os.Stdin)

// askText prompts for a line of input, returning the default when the
// user just hits enter or when --yes is given.
func askText(prompt, defaultValue string) string {
	if datamgrFlags.root.yes {
		noticef("--yes given, using default: %q", defaultValue)
		return defaultValue
	}
	fmt.Printf("%s [%s]: ", prompt, defaultValue)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return defaultValue
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}

// askConfirm prompts for a yes/no answer. --yes answers yes.
func askConfirm(prompt string) bool {
	if datamgrFlags.root.yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// askExact requires the user to re-type the expected text. This is the
// confirmation gate in front of irreversible deletions; a mismatch is
// treated as cancellation, not as an error. --yes bypasses the gate.
func askExact(prompt, expected string) bool {
	if datamgrFlags.root.yes {
		return true
	}
	fmt.Printf("%s: ", prompt)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == expected
}
