// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package protocol

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultPath is where the expressions executable is expected to be found,
// relative to the working directory.
const DefaultPath = "./expressions"

// Process is a running instance of the expressions process.  Standard output
// and standard error must both be drained before calling Wait.
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait for the process to terminate, returning its exit code.  An error is
	// returned only when the process could not be waited for (e.g. it was
	// killed), not for a non-zero exit code.
	Wait() (int, error)
}

// Engine starts instances of the expressions process.  Cancelling the context
// terminates the process.
type Engine interface {
	Start(ctx context.Context, args []string) (Process, error)
}

// DefaultWaitDelay is how long an ExecEngine waits, once its process has been
// killed or has exited, for the pipes to be closed before closing them itself.
const DefaultWaitDelay = time.Second

// ExecEngine runs the expressions executable as a child process.  The process
// is started in its own process group (where supported), and cancellation
// kills the whole group.
type ExecEngine struct {
	// Path of the executable (default is DefaultPath).
	Path string
	// Dir is the working directory of the process (default is the current
	// directory).
	Dir string
	// WaitDelay bounds how long output is read after the process is killed or
	// exits, covering any descendant still holding its pipes open (0 means
	// DefaultWaitDelay).
	WaitDelay time.Duration
}

// Start implementation for the Engine interface.
func (p *ExecEngine) Start(ctx context.Context, args []string) (Process, error) {
	var (
		path             = p.Path
		stdoutR, stdoutW = io.Pipe()
		stderrR, stderrW = io.Pipe()
	)
	//
	if path == "" {
		path = DefaultPath
	}
	//
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = p.Dir
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.WaitDelay = p.WaitDelay
	//
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	//
	isolate(cmd)
	//
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	//
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}
	//
	proc := &execProcess{cmd: cmd, stdin: stdin, stdout: stdoutR, stderr: stderrR, done: make(chan struct{})}
	// Output is copied by goroutines owned by cmd, which Wait shuts down (after
	// WaitDelay at the latest).  Only then is the end of output signalled.
	go func() {
		proc.err = cmd.Wait()
		stdoutW.Close()
		stderrW.Close()
		close(proc.done)
	}()
	//
	return proc, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr io.Reader
	done   chan struct{}
	err    error
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	<-p.done
	// A process which exited by itself has an exit code, even if some
	// descendant kept its pipes open beyond the wait delay.
	if state := p.cmd.ProcessState; state != nil && state.Exited() {
		return state.ExitCode(), nil
	} else if p.err != nil {
		return -1, p.err
	}
	//
	return 0, nil
}
