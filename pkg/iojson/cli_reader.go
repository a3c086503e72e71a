package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type FileReader[T any] struct {
	fileFlagValue string
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Read decodes input from the --file flag value, or from stdin when no
// file was given and stdin is not a terminal.
func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return fr.ReadFrom(f)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
	}

	return fr.ReadFrom(os.Stdin)
}

// ReadFrom decodes input from an arbitrary reader. Split from Read so
// callers and tests can feed buffers directly.
func (fr *FileReader[T]) ReadFrom(r io.Reader) (T, error) {
	var input T
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}
