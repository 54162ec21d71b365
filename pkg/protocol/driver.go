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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// State identifies a stage in the lifetime of the expressions process.
type State uint8

// The states a driver passes through, in order.  The theory is sent only when
// the request has one.
const (
	Start State = iota
	NegotiateOperators
	SendMatrixHeader
	SendInvariantNames
	SendTheory
	SendValueMatrix
	AwaitResults
	Drain
	Terminated
)

var stateNames = []string{"Start", "NegotiateOperators", "SendMatrixHeader", "SendInvariantNames", "SendTheory",
	"SendValueMatrix", "AwaitResults", "Drain", "Terminated"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	//
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ProcessFailure reports that the expressions process exited with a non-zero
// exit code.  Any blocks already delivered still stand.
type ProcessFailure struct {
	ExitCode int
	// Last few lines of standard error.
	Stderr []string
}

func (e *ProcessFailure) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("expressions exited with code %d", e.ExitCode)
	}
	//
	return fmt.Sprintf("expressions exited with code %d: %s", e.ExitCode, e.Stderr[len(e.Stderr)-1])
}

// Report summarises one run of the expressions process.
type Report struct {
	// ExitCode of the process.
	ExitCode int
	// Blocks delivered.
	Blocks uint
	// Stderr holds every line written to standard error.
	Stderr []string
	// Elapsed wall-clock time.
	Elapsed time.Duration
}

// Maximum number of standard error lines carried in a ProcessFailure.
const failureLines = 5

// Driver runs a single request against the expressions process.
type Driver struct {
	// Engine which starts the process (default is an ExecEngine).
	Engine Engine
	// Grace, when positive, bounds the lifetime of the process to the time
	// limit of the request plus this duration, after which it is killed.
	Grace time.Duration
	// Log receives state transitions (at trace level) and standard error (at
	// debug level).
	Log *log.Entry
}

// Run a request to completion, calling onBlock for each block of tokens
// emitted on standard output in the order emitted.  A block is terminated by
// a blank line or by the end of output.  A non-zero exit code yields a
// *ProcessFailure alongside the report.  If the context is cancelled (or the
// grace period expires) the process is terminated and the context's error is
// returned.
func (p *Driver) Run(ctx context.Context, req *Request, onBlock func([]string)) (*Report, error) {
	var (
		logger  = p.logger().WithField("mode", req.Mode)
		start   = time.Now()
		report  = &Report{}
		stderrc = make(chan []string, 1)
		cancel  context.CancelFunc
	)
	//
	if err := req.Validate(); err != nil {
		return nil, err
	}
	//
	if p.Grace > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeLimit)*time.Second+p.Grace)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	//
	defer cancel()
	//
	transition(logger, Start)
	//
	args := Args(req)
	logger.Debugf("running expressions %s", strings.Join(args, " "))
	//
	proc, err := p.engine().Start(ctx, args)
	if err != nil {
		return nil, err
	}
	// Drain standard error concurrently, otherwise a chatty process can block
	// before it has consumed its input.
	go func() { stderrc <- drainStderr(logger, proc.Stderr()) }()
	//
	if err := send(logger, req, proc.Stdin()); err != nil {
		// Keep going: the process may still report its own failure
		logger.Warnf("writing to expressions: %v", err)
	}
	//
	transition(logger, AwaitResults)
	//
	report.Blocks = readBlocks(proc.Stdout(), onBlock)
	//
	transition(logger, Drain)
	//
	report.Stderr = <-stderrc
	report.ExitCode, err = proc.Wait()
	report.Elapsed = time.Since(start)
	//
	transition(logger, Terminated)
	//
	if ctx.Err() != nil {
		return nil, ctx.Err()
	} else if err != nil {
		return nil, fmt.Errorf("waiting for expressions: %w", err)
	} else if report.ExitCode != 0 {
		tail := report.Stderr[max(0, len(report.Stderr)-failureLines):]
		return report, &ProcessFailure{report.ExitCode, tail}
	}
	//
	return report, nil
}

func (p *Driver) engine() Engine {
	if p.Engine == nil {
		return &ExecEngine{}
	}
	//
	return p.Engine
}

func (p *Driver) logger() *log.Entry {
	if p.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	//
	return p.Log
}

func transition(logger *log.Entry, state State) {
	logger.Tracef("expressions: %s", state)
}

// Write the entire request and close standard input, which signals to the
// process that it can begin searching.
func send(logger *log.Entry, req *Request, stdin io.WriteCloser) error {
	var w = bufio.NewWriter(stdin)
	//
	if req.Operators != nil {
		transition(logger, NegotiateOperators)
		fmt.Fprintf(w, "%d\n", len(req.Operators))
		//
		for _, code := range req.Operators {
			writeLine(w, code)
		}
	}
	//
	transition(logger, SendMatrixHeader)
	fmt.Fprintf(w, "%d %d %d\n", len(req.Matrix), len(req.Names), req.Main+1)
	//
	transition(logger, SendInvariantNames)
	//
	for _, name := range req.Names {
		writeLine(w, name)
	}
	//
	if req.Theory != nil {
		transition(logger, SendTheory)
		//
		for _, line := range req.Theory {
			writeLine(w, line)
		}
	}
	//
	transition(logger, SendValueMatrix)
	//
	for _, row := range req.Matrix {
		for _, cell := range row {
			writeLine(w, cell)
		}
	}
	// Errors are sticky, so only flush needs checking
	err := w.Flush()
	//
	if cerr := stdin.Close(); err == nil {
		err = cerr
	}
	//
	return err
}

func writeLine(w *bufio.Writer, line string) {
	w.WriteString(line)
	w.WriteByte('\n')
}

// Read blocks of non-blank lines, each line being one token.  Runs of blank
// lines do not produce empty blocks, and a final unterminated block is still
// delivered.
func readBlocks(stdout io.Reader, onBlock func([]string)) uint {
	var (
		scanner = bufio.NewScanner(stdout)
		block   []string
		count   uint
	)
	//
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	//
	flush := func() {
		if len(block) > 0 {
			onBlock(block)
			count++
			block = nil
		}
	}
	//
	for scanner.Scan() {
		if token := strings.TrimSpace(scanner.Text()); token != "" {
			block = append(block, token)
		} else {
			flush()
		}
	}
	//
	flush()
	// Discard anything left after a scanning error
	io.Copy(io.Discard, stdout)
	//
	return count
}

func drainStderr(logger *log.Entry, stderr io.Reader) []string {
	var (
		scanner = bufio.NewScanner(stderr)
		lines   []string
	)
	//
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		logger.Debugf("> %s", line)
		lines = append(lines, line)
	}
	//
	io.Copy(io.Discard, stderr)
	//
	return lines
}
