package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"actbatch/internal/logging"
)

// Environment variables handed to the generation command.
const (
	EnvAPIKey      = "ACTBATCH_API_KEY"
	EnvDriverAsset = "ACTBATCH_DRIVER_ASSET"
)

// maxStderr bounds how much stderr ends up in an error message.
const maxStderr = 512

// Command runs an external program once per image. The program receives the
// image path and the output folder as its last two arguments and prints the
// path of the produced video as the last non-empty line of stdout.
type Command struct {
	Args        []string
	APIKey      string
	DriverAsset string
	Logger      logging.Logger
	// Stderr additionally receives the command's stderr when set.
	Stderr io.Writer
}

// NewCommand splits commandLine on whitespace. Quoting is not interpreted.
func NewCommand(commandLine, apiKey, driverAsset string, logger logging.Logger) (*Command, error) {
	args := strings.Fields(commandLine)
	if len(args) == 0 {
		return nil, errors.New("generator command is empty")
	}
	return &Command{Args: args, APIKey: apiKey, DriverAsset: driverAsset, Logger: logger}, nil
}

func (c *Command) Generate(ctx context.Context, imagePath, outputFolder string) (string, error) {
	if len(c.Args) == 0 {
		return "", errors.New("generator command is empty")
	}
	args := append(append([]string{}, c.Args[1:]...), imagePath, outputFolder)
	cmd := exec.CommandContext(ctx, c.Args[0], args...)
	cmd.Env = append(os.Environ(), EnvAPIKey+"="+c.APIKey, EnvDriverAsset+"="+c.DriverAsset)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	c.Logger.Verbosef("Running %s %s", c.Args[0], strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := tail(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", c.Args[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", c.Args[0], err)
	}
	return lastLine(stdout.String()), nil
}

func lastLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
