// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// prompter asks for missing values on an interactive stdin.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// text asks a free-form question. An empty answer yields def.
func (p *prompter) text(message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s (%s): ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// selectOne asks for one of options by its 1-based number.
func (p *prompter) selectOne(message string, options []string) (string, error) {
	fmt.Fprintln(p.out, message)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintf(p.out, "Select 1-%d: ", len(options))

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return "", fmt.Errorf("invalid selection: %q", answer)
	}
	return options[n-1], nil
}
