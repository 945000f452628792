package cli

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/doeshing/osai-go/internal/ports"
)

// Clipboard implements ports.Clipboard using pbcopy.
type Clipboard struct{}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) Enabled() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("pbcopy")
	return err == nil
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
	cmd := exec.Command("pbcopy")
	cmd.Stdin = bytes.NewBufferString(text)
	return cmd.Run()
}

var _ ports.Clipboard = (*Clipboard)(nil)
