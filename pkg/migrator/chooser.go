package migrator

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NonInteractive is a Chooser that never picks, returning ErrAmbiguousMatch.
var NonInteractive Chooser = ChooserFunc(func(name string, candidates []*Migration) (*Migration, error) {
	dirs := make([]string, len(candidates))
	for i, c := range candidates {
		dirs[i] = c.DirName()
	}

	return nil, errors.Wrapf(ErrAmbiguousMatch, "%q: %s", name, strings.Join(dirs, ", "))
})

type (
	// Chooser selects one migration among several that share a name.
	Chooser interface {
		Choose(name string, candidates []*Migration) (*Migration, error)
	}

	// ChooserFunc adapts a function to the Chooser interface.
	ChooserFunc func(name string, candidates []*Migration) (*Migration, error)

	// PromptChooser asks the user to pick a migration on a terminal.
	//
	// The candidates are listed with a number and the user may answer with the
	// number or the full directory name. An empty answer selects the first
	// candidate. Invalid answers are re-prompted until In is exhausted.
	PromptChooser struct {
		In  io.Reader
		Out io.Writer
	}
)

// Choose implements Chooser.
func (f ChooserFunc) Choose(name string, candidates []*Migration) (*Migration, error) {
	return f(name, candidates)
}

// Choose implements Chooser.
func (p *PromptChooser) Choose(name string, candidates []*Migration) (*Migration, error) {
	fmt.Fprintf(p.Out, "Multiple migrations named %q were found:\n", name)
	for i, c := range candidates {
		fmt.Fprintf(p.Out, "  %d) %s\n", i+1, c.DirName())
	}

	scanner := bufio.NewScanner(p.In)
	for {
		fmt.Fprintf(p.Out, "Which migration do you want to use? [%s]: ", candidates[0].DirName())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, errors.Wrap(err, "failed to read selection")
			}

			return nil, errors.Wrapf(ErrAmbiguousMatch, "no selection made for %q", name)
		}

		if mig := pick(strings.TrimSpace(scanner.Text()), candidates); mig != nil {
			return mig, nil
		}

		fmt.Fprintln(p.Out, "Invalid selection, enter a number or directory name.")
	}
}

func pick(answer string, candidates []*Migration) *Migration {
	if answer == "" {
		return candidates[0]
	}

	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1]
		}

		return nil
	}

	for _, c := range candidates {
		if c.DirName() == answer {
			return c
		}
	}

	return nil
}
