package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/pkg/ccsessions"
)

// errStopped ends an interactive run at the user's request
var errStopped = errors.New("stopped by user")

// prompter asks yes/no questions on a shared reader
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask returns the trimmed, lower-cased answer. EOF counts as an empty answer.
func (p *prompter) ask(question string) (string, error) {
	_, _ = fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// confirm defaults to no
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "yes", nil
}

// approveFunc asks whether to store each extracted candidate. "a" accepts
// the rest without asking, "q" stops.
func (p *prompter) approveFunc() func(ccsessions.SessionInfo, models.PatternInput) (bool, error) {
	acceptAll := false
	return func(info ccsessions.SessionInfo, c models.PatternInput) (bool, error) {
		if acceptAll {
			return true, nil
		}
		_, _ = fmt.Fprintln(p.out)
		printCandidate(p.out, c)
		for {
			answer, err := p.ask("Save this pattern? [y]es/[n]o/[a]ll/[q]uit ")
			if err != nil {
				return false, err
			}
			switch answer {
			case "y", "yes":
				return true, nil
			case "n", "no", "":
				return false, nil
			case "a", "all":
				acceptAll = true
				return true, nil
			case "q", "quit":
				return false, errStopped
			}
		}
	}
}
