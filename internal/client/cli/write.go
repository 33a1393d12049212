package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	syncengine "github.com/iudanet/devsync/internal/client/sync"
)

func (c *Cli) runWrite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("write", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ttl := fs.Duration("ttl", 0, "Revert the write unless the relay acknowledges it within this time")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w. Usage: client write [-ttl D] <id> <type> <json|->", err)
	}

	args = fs.Args()
	if len(args) != 3 {
		return fmt.Errorf("expected id, type and payload. Usage: client write [-ttl D] <id> <type> <json|->")
	}
	id, recordType := args[0], args[1]

	payload, err := c.readPayload(args[2])
	if err != nil {
		return err
	}

	if *ttl > 0 {
		written, err := c.engine.WriteProvisional(ctx, id, recordType, payload, *ttl)
		if err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		c.io.Printf("Written %s (version %d, provisional for %s)\n", written.ID, written.Version, *ttl)
	} else {
		written, err := c.engine.Write(ctx, id, recordType, payload)
		if err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		c.io.Printf("Written %s (version %d)\n", written.ID, written.Version)
	}

	c.waitSettled(ctx)
	return nil
}

// readPayload разбирает payload аргумента; "-" читает его из stdin
func (c *Cli) readPayload(arg string) (json.RawMessage, error) {
	raw := []byte(arg)
	if arg == "-" {
		data, err := c.io.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		raw = data
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func (c *Cli) runRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("missing record ID. Usage: client remove <id>")
	}
	id := args[0]

	if err := c.engine.Remove(ctx, id); err != nil {
		if errors.Is(err, syncengine.ErrRecordNotFound) {
			return fmt.Errorf("record not found with ID: %s", id)
		}
		return fmt.Errorf("failed to remove record: %w", err)
	}
	c.io.Printf("Removed %s\n", id)

	c.waitSettled(ctx)
	return nil
}

// waitSettled ждет до c.settle, пока очередь не опустеет.
// Offline устройство не ждет: записи уйдут при следующем запуске.
func (c *Cli) waitSettled(ctx context.Context) {
	states, unsubscribe := c.engine.Subscribe()
	defer unsubscribe()

	timer := time.NewTimer(c.settle)
	defer timer.Stop()

	var last syncengine.State
	for {
		select {
		case st, ok := <-states:
			if !ok {
				return
			}
			last = st
			if st.Pending == 0 {
				return
			}
			if !st.Online {
				c.io.Printf("Offline: %d record(s) queued, they will be sent on the next run\n", st.Pending)
				return
			}
		case <-timer.C:
			c.io.Printf("Warning: %d record(s) not yet acknowledged by the relay\n", last.Pending)
			return
		case <-ctx.Done():
			return
		}
	}
}
