package flashkv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/tracing"
)

// Reply status codes reported in outcomes.
const (
	StatusOK       = 200
	StatusNotFound = 404
	StatusError    = 500
)

// maxReplyBytes bounds how much of a reply line is read.
const maxReplyBytes = 1024 * 1024

// now is the clock used to time commands.
var now = time.Now

// Config describes a FlashKV run.
type Config struct {
	Address    string        // host:port
	Commands   []Command     // cycled by request index; empty means PING
	RandomKeys bool          // replace keys with KeyPrefix:n, n in [0, KeyRange)
	KeyPrefix  string
	KeyRange   int
	Timeout    time.Duration // per command, covering dial, write and read
}

// Executor sends one command per call. It is safe for concurrent use.
type Executor struct {
	cfg    Config
	dialer net.Dialer
	seq    atomic.Uint64
	tracer trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithTracer records one client span per command.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("flashkv address is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("flashkv timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.RandomKeys && cfg.KeyRange < 1 {
		return nil, fmt.Errorf("flashkv key range must be >= 1, got %d", cfg.KeyRange)
	}
	if len(cfg.Commands) == 0 {
		cfg.Commands = []Command{{name: "PING"}}
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "key"
	}

	e := &Executor{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute implements runner.Executor.
func (e *Executor) Execute(ctx context.Context) metrics.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := e.next()
	if e.tracer == nil {
		outcome, _ := e.send(ctx, cmd)
		return outcome
	}

	ctx, span := tracing.StartCommandSpan(ctx, e.tracer, cmd.Name(), e.cfg.Address)
	outcome, reply := e.send(ctx, cmd)
	detail := outcome.Error
	if detail == "" {
		detail = reply
	}
	tracing.EndCommandSpan(span, !outcome.Success, detail)
	return outcome
}

// next picks the command for this request and applies a random key when
// configured.
func (e *Executor) next() Command {
	n := e.seq.Add(1) - 1
	cmd := e.cfg.Commands[n%uint64(len(e.cfg.Commands))]
	if e.cfg.RandomKeys {
		cmd = cmd.WithKey(e.cfg.KeyPrefix + ":" + strconv.Itoa(rand.IntN(e.cfg.KeyRange)))
	}
	return cmd
}

// send performs one exchange on a fresh connection and returns the outcome
// with the trimmed reply line.
func (e *Executor) send(ctx context.Context, cmd Command) (metrics.Outcome, string) {
	start := now()
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	reply, err := e.roundTrip(ctx, cmd)
	elapsed := now().Sub(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return metrics.Outcome{
			Duration:  elapsed,
			Error:     err.Error(),
			ErrorKind: metrics.ClassifyError(err),
		}, ""
	}

	status, ok := ClassifyReply(reply)
	return metrics.Outcome{Duration: elapsed, StatusCode: status, Success: ok}, reply
}

func (e *Executor) roundTrip(ctx context.Context, cmd Command) (string, error) {
	conn, err := e.dialer.DialContext(ctx, "tcp", e.cfg.Address)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := io.WriteString(conn, cmd.Wire()); err != nil {
		return "", fmt.Errorf("send %s: %w", cmd.Name(), err)
	}

	line, err := bufio.NewReader(io.LimitReader(conn, maxReplyBytes)).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read %s reply: connection closed before a reply", cmd.Name())
		}
		return "", fmt.Errorf("read %s reply: %w", cmd.Name(), err)
	}
	return strings.TrimSpace(line), nil
}

// ClassifyReply maps a reply line onto a status code and success flag.
// Error replies fail; a missing key is still a successful operation.
func ClassifyReply(reply string) (status int, ok bool) {
	upper := strings.ToUpper(reply)
	switch {
	case strings.HasPrefix(reply, "-"), strings.HasPrefix(upper, "ERR"):
		return StatusError, false
	case strings.Contains(upper, "NIL"), strings.Contains(upper, "NOT FOUND"):
		return StatusNotFound, true
	default:
		return StatusOK, true
	}
}
