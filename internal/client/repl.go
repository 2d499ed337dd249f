package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/kvwire/internal/protocol"
	"github.com/fatih/color"
)

// Requester is the part of Client the REPL drives.
type Requester interface {
	Do(ctx context.Context, p protocol.Packet) (string, error)
}

var (
	replyColor   = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	usageColor   = color.New(color.FgYellow)
	promptColor  = color.New(color.FgCyan)
)

// RunREPL reads commands from in until EOF, "quit" or ctx is done, and
// writes each reply to out. Usage and request failures are printed and the
// loop continues; transport errors end it.
func RunREPL(ctx context.Context, r Requester, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		promptColor.Fprint(out, "kv> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			usageColor.Fprintln(out, Usage)
			continue
		}

		p, err := ParseCommand(line)
		if err != nil {
			usageColor.Fprintf(out, "%v\n", err)
			continue
		}
		reply, err := r.Do(ctx, p)
		switch {
		case errors.Is(err, ErrRequestFailed):
			failureColor.Fprintln(out, reply)
		case errors.Is(err, ErrReservedValue):
			usageColor.Fprintf(out, "%v\n", err)
		case err != nil:
			return err
		case p.Type == protocol.TypeText:
		default:
			replyColor.Fprintln(out, reply)
		}
	}
}
