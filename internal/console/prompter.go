// Package console reads operator answers line by line and prints menu output.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks one question at a time. Ask returns io.EOF once input is exhausted.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask writes prompt and returns the next input line without surrounding whitespace.
func (p *Prompter) Ask(prompt string) (string, error) {
	if _, err := io.WriteString(p.out, prompt); err != nil {
		return "", err
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *Prompter) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

func (p *Prompter) Out() io.Writer { return p.out }
