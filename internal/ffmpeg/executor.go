package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/five82/hecate/internal/errors"
	"github.com/five82/hecate/internal/logging"
)

// maxStderr bounds the stderr kept for error messages.
const maxStderr = 8 * 1024

// process is a running ffmpeg with its stdout exposed as a buffered reader.
type process struct {
	cmd    *exec.Cmd
	ctx    context.Context
	stdout *bufio.Reader
	closer io.Closer

	mu     sync.Mutex
	stderr strings.Builder
	done   chan struct{}
}

// startProcess launches ffmpeg with args and starts draining stderr.
func startProcess(ctx context.Context, args []string) (*process, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	log := logging.Component("ffmpeg")
	log.Debug().Strs("args", args).Msg("starting ffmpeg")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.NewCommandStartError("ffmpeg", err)
	}

	p := &process{
		cmd:    cmd,
		ctx:    ctx,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		closer: stdout,
		done:   make(chan struct{}),
	}
	go p.drainStderr(stderr)
	return p, nil
}

func (p *process) drainStderr(r io.Reader) {
	defer close(p.done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.mu.Lock()
		if p.stderr.Len() < maxStderr {
			p.stderr.WriteString(scanner.Text())
			p.stderr.WriteByte('\n')
		}
		p.mu.Unlock()
	}
}

// Stderr returns the captured stderr so far.
func (p *process) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.TrimSpace(p.stderr.String())
}

// wait reaps the process and converts failures into typed errors.
func (p *process) wait() error {
	<-p.done
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	if p.ctx.Err() != nil {
		return errors.NewCancelledError()
	}
	return errors.NewFFmpegError("decode failed", errors.WrapExecError("ffmpeg", err, p.Stderr()))
}

// kill stops the process early and reaps it.
func (p *process) kill() error {
	_ = p.closer.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
	_ = p.cmd.Wait()
	return nil
}
