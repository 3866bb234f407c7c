// Package session implements the SSH session worker: one authenticated
// management session per device, command execution under a per-call
// timeout, and classified failures. The worker never retries on its
// own; retry is the explicit WithRetry wrapper.
package session

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"

	"mirrorlab/internal/domain"
)

// Config holds the session worker settings
type Config struct {
	// Port is the SSH port on every device
	Port int
	// Credentials authenticate every session
	Credentials domain.Credentials
	// ConnectTimeout bounds dial plus handshake
	ConnectTimeout time.Duration
	// CommandTimeout bounds one command execution
	CommandTimeout time.Duration
	// DialRate and DialBurst throttle connection attempts across the
	// whole worker pool; zero DialRate disables throttling
	DialRate  float64
	DialBurst int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Port:           22,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
		DialRate:       5,
		DialBurst:      10,
	}
}

// Worker opens sessions and executes commands on devices. Safe for
// concurrent use; the dial limiter is shared across all callers.
type Worker struct {
	config  Config
	limiter *rate.Limiter
}

// NewWorker creates a session worker
func NewWorker(config Config) *Worker {
	limit := rate.Inf
	if config.DialRate > 0 {
		limit = rate.Limit(config.DialRate)
	}
	burst := config.DialBurst
	if burst < 1 {
		burst = 1
	}
	return &Worker{
		config:  config,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Session is one open management session to one device
type Session struct {
	device *domain.Device
	client *ssh.Client
	config Config
}

// Open establishes an authenticated session to the device. Failures
// come back as classified faults: connection, authentication, or
// timeout.
func (w *Worker) Open(ctx context.Context, device *domain.Device) (*Session, error) {
	if device.Addr == "" {
		return nil, domain.NewFault(domain.FaultConnection, device.Name, "dial",
			fmt.Errorf("no management address"))
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, Classify(err, device.Name, "dial")
	}

	sshConfig := &ssh.ClientConfig{
		User: w.config.Credentials.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(w.config.Credentials.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         w.config.ConnectTimeout,
	}

	addr := net.JoinHostPort(device.Addr, strconv.Itoa(w.config.Port))
	dialer := &net.Dialer{Timeout: w.config.ConnectTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, Classify(err, device.Name, "dial")
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, Classify(err, device.Name, "handshake")
	}

	return &Session{
		device: device,
		client: ssh.NewClient(sshConn, chans, reqs),
		config: w.config,
	}, nil
}

// Run executes one command over a fresh session and closes it on every
// exit path. Most callers want this; Open is for running several
// commands over one connection.
func (w *Worker) Run(ctx context.Context, device *domain.Device, command string) (string, error) {
	sess, err := w.Open(ctx, device)
	if err != nil {
		return "", err
	}
	defer sess.Close()
	return sess.Run(ctx, command)
}

// Run executes a command, bounded by the command timeout. On expiry the
// remote process receives SIGKILL and the channel is torn down.
func (s *Session) Run(ctx context.Context, command string) (string, error) {
	sshSess, err := s.client.NewSession()
	if err != nil {
		return "", Classify(err, s.device.Name, command)
	}
	defer sshSess.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := sshSess.CombinedOutput(command)
		done <- result{output: output, err: err}
	}()

	timeout := s.config.CommandTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().CommandTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			if _, ok := r.err.(*ssh.ExitError); ok {
				return string(r.output), domain.NewFault(domain.FaultCommand, s.device.Name, command, r.err)
			}
			return "", Classify(r.err, s.device.Name, command)
		}
		return string(r.output), nil
	case <-ctx.Done():
		sshSess.Signal(ssh.SIGKILL)
		return "", Classify(ctx.Err(), s.device.Name, command)
	case <-timer.C:
		sshSess.Signal(ssh.SIGKILL)
		return "", domain.NewFault(domain.FaultTimeout, s.device.Name, command,
			fmt.Errorf("no response within %s", timeout))
	}
}

// Close releases the underlying connection
func (s *Session) Close() error {
	return s.client.Close()
}
