// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	binUnar   = "unar"
	bin7Zip   = "7z"
	maxStderr = 512
)

// RarTool unpacks RAR-compatible archives by running an external program.
type RarTool interface {
	// Name returns the binary the tool runs ("unar", "7z", or a configured path).
	Name() string

	// Available reports whether the binary can be found.
	Available() bool

	// Extract unpacks archive into dest. A non-zero exit status is an error.
	Extract(ctx context.Context, archive, dest string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// rarTool implements RarTool for one binary. unar and 7-Zip differ only in
// how the destination and archive are passed.
type rarTool struct {
	bin  string
	args func(archive, dest string) []string
	exec executor
}

func (t *rarTool) Name() string { return t.bin }

func (t *rarTool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *rarTool) Extract(ctx context.Context, archive, dest string) error {
	var stderr bytes.Buffer
	if err := t.exec.Run(ctx, t.bin, t.args(archive, dest), io.Discard, &stderr); err != nil {
		if msg := tail(stderr.String(), maxStderr); msg != "" {
			return fmt.Errorf("running %s: %w: %s", t.bin, err, msg)
		}
		return fmt.Errorf("running %s: %w", t.bin, err)
	}
	return nil
}

// unarArgs builds `unar -o <dest> <archive>`.
func unarArgs(archive, dest string) []string {
	return []string{"-o", dest, archive}
}

// sevenZipArgs builds `7z x -y -o<dest> <archive>`.
func sevenZipArgs(archive, dest string) []string {
	return []string{"x", "-y", "-o" + dest, archive}
}

func newUnarTool(exec executor) *rarTool {
	return &rarTool{bin: binUnar, args: unarArgs, exec: exec}
}

func new7ZipTool(exec executor) *rarTool {
	return &rarTool{bin: bin7Zip, args: sevenZipArgs, exec: exec}
}

func newRarTool(bin string, exec executor) *rarTool {
	base := strings.ToLower(filepath.Base(bin))
	if strings.HasPrefix(base, "7z") {
		return &rarTool{bin: bin, args: sevenZipArgs, exec: exec}
	}
	return &rarTool{bin: bin, args: unarArgs, exec: exec}
}

var defaultExec = &osExecutor{}

// NewRarTool returns a tool that runs bin. Binaries named 7z* are invoked
// with 7-Zip arguments; anything else is invoked like unar.
func NewRarTool(bin string) RarTool {
	return newRarTool(bin, defaultExec)
}

// DetectRarTool tries unar first, falls back to 7z. Returns an error if
// neither is on PATH.
func DetectRarTool() (RarTool, error) {
	return detectRarTool(defaultExec)
}

func detectRarTool(exec executor) (RarTool, error) {
	unar := newUnarTool(exec)
	if unar.Available() {
		return unar, nil
	}

	sevenZip := new7ZipTool(exec)
	if sevenZip.Available() {
		return sevenZip, nil
	}

	return nil, fmt.Errorf(
		"no RAR extraction tool available: neither %s nor %s found on PATH",
		binUnar, bin7Zip,
	)
}

// tail returns the last n bytes of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
