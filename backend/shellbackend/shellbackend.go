// Package shellbackend is a secondary, illustrative Backend that hands a
// Modify request to an external command over a pipe instead of touching
// pebble directly, mirroring back-shell/modify.c's forkandexec-and-pipe
// design.
package shellbackend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dirdkv/dird/backend"
	"github.com/dirdkv/dird/direrr"
	"github.com/dirdkv/dird/entry"

	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("shellbackend")

// Backend runs Command once per Modify call, writes the request in the
// line-based protocol below to its stdin, and parses a single result
// block from its stdout.
//
// Request protocol (one line per field, terminated by a bare "-" line per
// modification, matching the original's per-mod terminator):
//
//	MODIFY
//	dn: <name>
//	add: <attr>        (or delete:/replace:)
//	<attr>: <value>    (repeated per value)
//	-
//	...
//
// Result protocol (single block, terminated by blank line or EOF):
//
//	RESULT
//	code: <int>
//	text: <string>
type Backend struct {
	Command   string
	Args      []string
	Timeout   time.Duration
	updateNDN string
	lastMod   bool
}

// New builds a shell-piped Backend. updateNDN/lastMod mirror Primary's
// fields of the same name.
func New(command string, args []string, updateNDN string, lastMod bool) *Backend {
	return &Backend{Command: command, Args: args, Timeout: 10 * time.Second, updateNDN: updateNDN, lastMod: lastMod}
}

func (b *Backend) UpdateNDN() string { return b.updateNDN }
func (b *Backend) LastMod() bool     { return b.lastMod }

func (b *Backend) Modify(req *backend.Request) *backend.Reply {
	if b.Command == "" {
		return &backend.Reply{Code: direrr.UnwillingToPerform, Text: "modify not implemented"}
	}

	ctx := context.Background()
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, b.Command, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Errorf("shellbackend: could not open stdin pipe: %v", err)
		return &backend.Reply{Code: direrr.Other, Text: "could not fork/exec"}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Errorf("shellbackend: could not open stdout pipe: %v", err)
		return &backend.Reply{Code: direrr.Other, Text: "could not fork/exec"}
	}
	if err := cmd.Start(); err != nil {
		log.Errorf("shellbackend: could not fork/exec %s: %v", b.Command, err)
		return &backend.Reply{Code: direrr.Other, Text: "could not fork/exec"}
	}

	writeRequest(stdin, req)
	_ = stdin.Close()

	reply := readResult(stdout)

	if err := cmd.Wait(); err != nil {
		log.Warningf("shellbackend: child process %s exited with error: %v", b.Command, err)
	}

	return reply
}

func writeRequest(w io.Writer, req *backend.Request) {
	fmt.Fprintln(w, "MODIFY")
	fmt.Fprintf(w, "dn: %s\n", req.Name)
	for _, mod := range req.ModList {
		switch mod.Op {
		case entry.Add:
			fmt.Fprintf(w, "add: %s\n", mod.Desc.Name)
		case entry.Delete:
			fmt.Fprintf(w, "delete: %s\n", mod.Desc.Name)
		case entry.Replace:
			fmt.Fprintf(w, "replace: %s\n", mod.Desc.Name)
		case entry.Increment:
			fmt.Fprintf(w, "increment: %s\n", mod.Desc.Name)
		}
		for _, v := range mod.Values {
			fmt.Fprintf(w, "%s: %s\n", mod.Desc.Name, v)
		}
		fmt.Fprintln(w, "-")
	}
}

func readResult(r io.Reader) *backend.Reply {
	scanner := bufio.NewScanner(r)
	reply := &backend.Reply{Code: direrr.Other, Text: "no result from child process"}
	sawResult := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		switch {
		case line == "RESULT":
			sawResult = true
			reply = &backend.Reply{Code: direrr.Success}
		case strings.HasPrefix(line, "code: "):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "code: "))
			if err == nil {
				reply.Code = direrr.ReplyCode(n)
			}
		case strings.HasPrefix(line, "text: "):
			reply.Text = strings.TrimPrefix(line, "text: ")
		}
	}
	if !sawResult {
		log.Warningf("shellbackend: child process produced no RESULT block")
	}
	return reply
}
