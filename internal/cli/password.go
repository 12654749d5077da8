package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/vvka-141/benchload/pkg/benchload"
)

// passwordPrompter reads a password after writing prompt. Tests replace it.
var passwordPrompter = func(prompt string) (string, error) {
	return readPassword(os.Stdin, os.Stderr, prompt)
}

// readPassword writes prompt to out and reads one line from in. When in is a
// terminal, echo is disabled while reading.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// needsPasswordPrompt reports whether a user was named on the command line
// without a password from the flag or $PGPASSWORD. Cloud authentication
// uses tokens and never prompts.
func needsPasswordPrompt(usernameFlag string, conn *benchload.ConnectionConfig) bool {
	return usernameFlag != "" && conn.Password == "" && conn.AuthMethod == benchload.AuthMethodStandard
}

// promptForPassword fills conn.Password when needsPasswordPrompt says so.
func promptForPassword(usernameFlag string, conn *benchload.ConnectionConfig) error {
	if !needsPasswordPrompt(usernameFlag, conn) {
		return nil
	}
	password, err := passwordPrompter(fmt.Sprintf("Password for user %s: ", conn.Username))
	if err != nil {
		return err
	}
	conn.Password = password
	return nil
}
