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
// Package protocoltest provides an in-process stand-in for the expressions
// process, which records what it was sent and replays canned output.
package protocoltest

import (
	"context"
	"io"
	"sync"

	"github.com/consensys/go-conjecture/pkg/protocol"
)

// Call records a single run of the fake engine.
type Call struct {
	Args  []string
	Stdin string
}

// Engine is a fake protocol.Engine.  The process it starts reads all of its
// standard input, and then writes Stdout and Stderr before exiting with
// ExitCode.
type Engine struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// StartErr, when non-nil, is returned from Start.
	StartErr error
	// RejectInput closes standard input immediately, as a process which dies
	// on startup would.
	RejectInput bool
	// Hang makes the process produce no output until its context is
	// cancelled.
	Hang bool
	//
	mux   sync.Mutex
	calls []Call
}

// Calls returns every run recorded so far.
func (p *Engine) Calls() []Call {
	p.mux.Lock()
	defer p.mux.Unlock()
	//
	return append([]Call(nil), p.calls...)
}

// Last returns the most recent run, or an empty call if there has been none.
func (p *Engine) Last() Call {
	calls := p.Calls()
	//
	if len(calls) == 0 {
		return Call{}
	}
	//
	return calls[len(calls)-1]
}

// Start implementation for the protocol.Engine interface.
func (p *Engine) Start(ctx context.Context, args []string) (protocol.Process, error) {
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	//
	var (
		inR, inW   = io.Pipe()
		outR, outW = io.Pipe()
		errR, errW = io.Pipe()
		proc       = &process{inW, outR, errR, make(chan struct{}), 0, nil}
	)
	//
	if p.RejectInput {
		inR.Close()
	}
	//
	go func() {
		defer close(proc.done)
		//
		stdin, _ := io.ReadAll(inR)
		p.record(args, string(stdin))
		//
		if p.Hang {
			<-ctx.Done()
			outW.CloseWithError(ctx.Err())
			errW.CloseWithError(ctx.Err())
			proc.code, proc.err = -1, ctx.Err()
			//
			return
		}
		//
		var wg sync.WaitGroup
		//
		wg.Add(1)
		//
		go func() {
			defer wg.Done()
			io.WriteString(errW, p.Stderr)
			errW.Close()
		}()
		//
		io.WriteString(outW, p.Stdout)
		outW.Close()
		wg.Wait()
		//
		proc.code = p.ExitCode
	}()
	//
	return proc, nil
}

func (p *Engine) record(args []string, stdin string) {
	p.mux.Lock()
	defer p.mux.Unlock()
	//
	p.calls = append(p.calls, Call{append([]string(nil), args...), stdin})
}

type process struct {
	stdin  *io.PipeWriter
	stdout *io.PipeReader
	stderr *io.PipeReader
	done   chan struct{}
	code   int
	err    error
}

func (p *process) Stdin() io.WriteCloser { return p.stdin }

func (p *process) Stdout() io.Reader { return p.stdout }

func (p *process) Stderr() io.Reader { return p.stderr }

func (p *process) Wait() (int, error) {
	<-p.done
	return p.code, p.err
}
