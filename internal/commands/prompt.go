package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"tasktrack/internal/config"
)

// prompter reads answers from the config's input. Passwords are read
// without echo when the input is a terminal.
type prompter struct {
	in     *bufio.Reader
	file   *os.File
	errOut io.Writer
}

func newPrompter(cfg *config.Config, errOut io.Writer) *prompter {
	in := cfg.Input()
	p := &prompter{in: bufio.NewReader(in), errOut: errOut}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

// Line prompts for one line of text.
func (p *prompter) Line(label string) (string, error) {
	if p.file != nil {
		fmt.Fprintf(p.errOut, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password prompts for a password.
func (p *prompter) Password() (string, error) {
	if p.file == nil {
		return p.Line("Password")
	}
	fmt.Fprint(p.errOut, "Password: ")
	pw, err := term.ReadPassword(int(p.file.Fd()))
	fmt.Fprintln(p.errOut)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// credentials returns the email (prompting when empty) and password.
func (p *prompter) credentials(email string) (string, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		var err error
		if email, err = p.Line("Email"); err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(email)
	}
	if email == "" {
		return "", "", errors.New("email required")
	}
	password, err := p.Password()
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", errors.New("password required")
	}
	return email, password, nil
}
