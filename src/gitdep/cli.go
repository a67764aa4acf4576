package gitdep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	archiveTimeout   = 30 * time.Second
	maxArchiveOutput = 10 << 20 // 10 MB
)

// errOutputTooLarge aborts an archive pipeline that exceeds the cap.
var errOutputTooLarge = errors.New("gitdep: archive output exceeds limit")

// resolveGitCLI fetches manifests via `git archive --remote | tar -xO`.
// It fails immediately with a diagnostic when the toolchain is missing.
func resolveGitCLI(ctx context.Context, repoURL, ref, crate string, opts Options) Resolution {
	if missing := missingTools(); len(missing) > 0 {
		return Resolution{Err: fmt.Errorf("%w: missing %s", ErrToolsUnavailable, strings.Join(missing, ", "))}
	}

	fetch := func(path string) ([]byte, error) {
		return gitArchiveFile(ctx, repoURL, ref, path)
	}
	return resolveViaFetch(fetch, crate, opts.logger())
}

// gitArchiveFile runs the remote-archive-and-extract pipeline for one
// file, with a hard timeout and a capped output buffer.
func gitArchiveFile(ctx context.Context, repoURL, ref, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	pipeline := fmt.Sprintf("git archive --remote=%s %s %s | tar -xO %s",
		shellQuote(repoURL), shellQuote(ref), shellQuote(path), shellQuote(path))

	cmd := exec.CommandContext(ctx, "sh", "-c", pipeline)
	out := &cappedBuffer{limit: maxArchiveOutput}
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("gitdep: git archive %s timed out after %s", repoURL, archiveTimeout)
	}
	if err != nil {
		if errors.Is(err, errOutputTooLarge) {
			return nil, err
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gitdep: git archive %s %s: %s", repoURL, path, msg)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("gitdep: git archive %s %s: empty output", repoURL, path)
	}
	return out.Bytes(), nil
}

// shellQuote single-quotes s for POSIX sh, escaping embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// cappedBuffer is a bytes.Buffer that refuses writes past a fixed limit,
// killing the producing pipeline via the write error.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.buf.Len()+len(p) > c.limit {
		return 0, errOutputTooLarge
	}
	return c.buf.Write(p)
}

func (c *cappedBuffer) Bytes() []byte { return c.buf.Bytes() }
func (c *cappedBuffer) Len() int      { return c.buf.Len() }
