package fontgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// waitDelay bounds how long a cancelled compiler may hold its output pipes.
const waitDelay = 5 * time.Second

// CompileError reports a failed run of the external compiler.
type CompileError struct {
	Bin    string
	Stderr string
	Err    error
}

func (e *CompileError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s: %v", e.Bin, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Bin, e.Err, msg)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Webfont runs the webfont command line tool.
type Webfont struct {
	// Bin is the executable name or path.
	Bin string
}

// Compile writes the fonts into a scratch directory and reads them back.
func (w *Webfont) Compile(ctx context.Context, req Request) (Result, error) {
	if len(req.Files) == 0 {
		return nil, errors.New("no glyph files to compile")
	}
	if req.FontName == "" {
		return nil, errors.New("font name is required")
	}

	dest, err := os.MkdirTemp("", "iconfont-webfont-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dest)

	formats := make([]string, len(req.Formats))
	for i, f := range req.Formats {
		formats[i] = string(f)
	}

	args := append([]string{}, req.Files...)
	args = append(args,
		"--font-name", req.FontName,
		"--formats", strings.Join(formats, ","),
		"--normalize",
		"--dest", dest,
	)
	if req.FontHeight > 0 {
		args = append(args, "--font-height", strconv.Itoa(req.FontHeight))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.Bin, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &CompileError{Bin: w.Bin, Stderr: stderr.String(), Err: err}
	}

	res := make(Result, len(req.Formats))
	for _, f := range req.Formats {
		data, err := os.ReadFile(filepath.Join(dest, req.FontName+"."+string(f)))
		if err != nil {
			return nil, fmt.Errorf("%s produced no %s output: %w", w.Bin, f, err)
		}
		res[f] = data
	}
	return res, nil
}
