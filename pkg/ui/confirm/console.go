// Package confirm provides the console confirmation dialog the rollback
// engine uses before any destructive action.
package confirm

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// ConsoleDialog asks for rollback approval on the terminal. When stdin is
// not a terminal, or the answer cannot be read, it declines: automated
// contexts never get a destructive default.
type ConsoleDialog struct {
	in  io.Reader
	tty bool
}

// NewConsoleDialog creates a dialog reading from os.Stdin
func NewConsoleDialog() *ConsoleDialog {
	return &ConsoleDialog{
		in:  os.Stdin,
		tty: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// NewDialogWithInput creates a dialog over an arbitrary reader, for tests
func NewDialogWithInput(in io.Reader) *ConsoleDialog {
	return &ConsoleDialog{in: in, tty: true}
}

// ShowPreview renders the paths a rollback would restore. It always runs
// before anything destructive, whether or not a prompt follows.
func ShowPreview(sessionID string, paths []string) {
	pterm.DefaultSection.Printf("Rollback of session %s will restore:", sessionID)

	items := make([]pterm.BulletListItem, 0, len(paths))
	for _, p := range paths {
		items = append(items, pterm.BulletListItem{Level: 0, Text: p})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
}

// ConfirmRollback shows the affected paths and asks for a yes/no answer.
// Only an explicit "y" or "yes" approves.
func (d *ConsoleDialog) ConfirmRollback(sessionID string, paths []string) (bool, error) {
	ShowPreview(sessionID, paths)

	if !d.tty {
		pterm.Warning.Println("Standard input is not a terminal, declining rollback")
		return false, nil
	}

	pterm.Print("Continue and overwrite the current state of these paths? [y/N]: ")

	reader := bufio.NewReader(d.in)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
