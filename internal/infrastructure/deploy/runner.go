package deploy

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

// ErrBuildInProgress is returned when a rebuild is requested while another runs.
var ErrBuildInProgress = crerr.New("build already in progress")

const outputTailBytes = 4096

type Config struct {
	Command []string
	Dir     string
	Timeout time.Duration
}

// Result describes one finished rebuild.
type Result struct {
	Duration   time.Duration
	OutputTail string
}

// Runner executes the site build command, one run at a time.
type Runner struct {
	cfg    Config
	logger *logging.Logger
	mu     sync.Mutex
}

func NewRunner(cfg Config, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run starts the build and waits for it. It never queues: a call made while a
// build is running returns ErrBuildInProgress immediately.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if len(r.cfg.Command) == 0 {
		return Result{}, crerr.New("deploy command is empty")
	}
	if !r.mu.TryLock() {
		return Result{}, ErrBuildInProgress
	}
	defer r.mu.Unlock()

	// The build outlives a dropped webhook connection; only the timeout stops it.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
	defer cancel()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cmd := exec.CommandContext(runCtx, r.cfg.Command[0], r.cfg.Command[1:]...)
	cmd.Dir = r.cfg.Dir
	cmd.Stdout = buf
	cmd.Stderr = buf
	cmd.WaitDelay = time.Second

	started := time.Now()
	r.logger.InfoContext(ctx, "deploy build started", "command", strings.Join(r.cfg.Command, " "), "dir", r.cfg.Dir)
	err := cmd.Run()
	result := Result{
		Duration:   time.Since(started),
		OutputTail: tail(buf.B, outputTailBytes),
	}
	if err != nil {
		if runCtx.Err() != nil {
			err = crerr.Wrapf(runCtx.Err(), "build timed out after %s", r.cfg.Timeout)
		}
		r.logger.ErrorContext(ctx, "deploy build failed",
			"duration_ms", result.Duration.Milliseconds(),
			"output", result.OutputTail,
			"error", err,
		)
		return result, crerr.Wrap(err, "run build command")
	}

	r.logger.InfoContext(ctx, "deploy build finished", "duration_ms", result.Duration.Milliseconds())
	return result, nil
}

func tail(b []byte, limit int) string {
	if len(b) > limit {
		b = b[len(b)-limit:]
	}
	return strings.TrimSpace(string(b))
}
