package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand runs command as a subcommand of a test app rooted at dir and
// returns everything written to the app's writer. Stdin is empty.
func RunCommand(t *testing.T, dir string, command *cli.Command, args ...string) (string, error) {
	t.Helper()
	return RunCommandWithInput(t, dir, "", command, args...)
}

// RunCommandWithInput is RunCommand with the given text on stdin.
func RunCommandWithInput(t *testing.T, dir, input string, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:   "test",
		Reader: strings.NewReader(input),
		Writer: &out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: "."},
		},
		Commands: []*cli.Command{command},
	}

	fullArgs := append([]string{"test", "--dir", dir, command.Name}, args...)
	err := app.Run(context.Background(), fullArgs)
	return out.String(), err
}
