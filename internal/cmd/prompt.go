package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter asks for values the user did not pass as flags.
type prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, r: bufio.NewReader(in), out: cmd.ErrOrStderr()}
}

// line prints label and reads one line of input.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label+": ")
	s, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}

// password reads a secret without echo when input is a terminal, and as a
// plain line otherwise so scripts can pipe it in.
func (p *prompter) password(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}

	fmt.Fprint(p.out, label+": ")
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// fill prompts for *dst when it is empty.
func (p *prompter) fill(dst *string, label string, secret bool) error {
	if *dst != "" {
		return nil
	}
	var (
		v   string
		err error
	)
	if secret {
		v, err = p.password(label)
	} else {
		v, err = p.line(label)
	}
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
