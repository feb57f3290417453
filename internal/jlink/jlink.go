// Copyright 2025 The Tocktool Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jlink drives an external J-Link-style debug-probe executable
// through one complete flash session: reset, load, reset, run.
package jlink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/JamesLinus/tocktool/internal/target"
)

// A Runner invokes an external command and returns its combined output.
// It exists so the session logic is testable without a real probe driver.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	return cmd.CombinedOutput()
}

// FlashError reports a failed probe invocation with the probe's captured
// output. Flashing is never retried: a failure may mean a disconnected or
// half-programmed device.
type FlashError struct {
	Output []byte
	Err    error
}

func (e *FlashError) Error() string {
	s := "flashing failed: " + e.Err.Error()
	if len(e.Output) != 0 {
		s += "\n" + string(e.Output)
	}
	return s
}

func (e *FlashError) Unwrap() error { return e.Err }

// State of a flash session.
type State int

const (
	Idle State = iota
	Reset
	Loaded
	Running
	Complete
)

var stateNames = [...]string{"idle", "reset", "loaded", "running", "complete"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// A Session owns one device-programming interaction. Exe is the probe
// driver executable. A zero Timeout blocks until the probe exits.
type Session struct {
	Target  target.Target
	Exe     string
	Timeout time.Duration
	Run     Runner

	state State
}

func (s *Session) State() State { return s.state }

func (s *Session) setState(st State) {
	glog.V(1).Infof("flash session: %v -> %v", s.state, st)
	s.state = st
}

// FlashKernel flashes the kernel alone using the static command script at
// scriptPath. No transient file is created.
func (s *Session) FlashKernel(ctx context.Context, scriptPath string) error {
	return s.invoke(ctx, scriptPath, false)
}

// FlashApp flashes the combined kernel+app image from its Intel HEX file.
// It generates a uniquely named transient command script, runs the probe
// against it and removes the script whether or not the probe succeeds.
func (s *Session) FlashApp(ctx context.Context, hexPath string) error {
	f, err := os.CreateTemp("", "tocktool-*.jlink")
	if err != nil {
		return err
	}
	script := f.Name()
	defer os.Remove(script)
	_, werr := f.Write(commandScript(hexPath))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("%s: %w", script, werr)
	}
	return s.invoke(ctx, script, true)
}

// commandScript encodes the flash session for the probe's command file:
// reset, load the image, reset, run, quit.
func commandScript(hexPath string) []byte {
	return []byte("r\nloadfile " + hexPath + "\nr\ng\nq\n")
}

func (s *Session) invoke(ctx context.Context, script string, loaded bool) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	t := s.Target
	args := []string{
		"-device", t.Device,
		"-if", t.Interface,
		"-speed", strconv.Itoa(t.Speed),
		"-AutoConnect", "1",
		"-CommandFile", script,
	}
	glog.Infof("flashing %s via %s %v", t.Name, s.Exe, args)
	s.setState(Reset)
	out, err := s.Run.Run(ctx, s.Exe, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("probe timed out after %v: %w", s.Timeout, err)
		}
		return &FlashError{Output: out, Err: err}
	}
	if loaded {
		s.setState(Loaded)
	}
	s.setState(Running)
	s.setState(Complete)
	glog.V(1).Infof("probe output:\n%s", out)
	return nil
}
