package clab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// RunnerConfig controls how the containerlab binary is invoked
type RunnerConfig struct {
	// Binary is the containerlab executable
	Binary string
	// DeployTimeout is passed to containerlab's own --timeout flag
	DeployTimeout time.Duration
}

// DefaultRunnerConfig returns sensible defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Binary:        "containerlab",
		DeployTimeout: 4 * time.Minute,
	}
}

// Runner shells out to containerlab, streaming its output to the
// operator's terminal
type Runner struct {
	config RunnerConfig
}

// NewRunner creates a runner
func NewRunner(config RunnerConfig) *Runner {
	return &Runner{config: config}
}

// Deploy brings the lab up and then shows the inspect table
func (r *Runner) Deploy(ctx context.Context, topologyPath string) error {
	args := []string{"deploy", "-t", topologyPath}
	if r.config.DeployTimeout > 0 {
		args = append(args, "--timeout", r.config.DeployTimeout.String())
	}
	if err := r.run(ctx, args...); err != nil {
		return fmt.Errorf("containerlab deploy failed: %w", err)
	}
	if err := r.run(ctx, "inspect", "-t", topologyPath); err != nil {
		return fmt.Errorf("containerlab inspect failed: %w", err)
	}
	return nil
}

// Inspect shows the state of a deployed lab
func (r *Runner) Inspect(ctx context.Context, topologyPath string) error {
	return r.run(ctx, "inspect", "-t", topologyPath)
}

// Destroy tears the lab down and removes containerlab's runtime state
func (r *Runner) Destroy(ctx context.Context, topologyPath string) error {
	if err := r.run(ctx, "destroy", "-t", topologyPath, "--cleanup"); err != nil {
		return fmt.Errorf("containerlab destroy failed: %w", err)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	slog.Info("running containerlab", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.config.Binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s not found in PATH: %w", r.config.Binary, err)
		}
		return err
	}
	return nil
}
