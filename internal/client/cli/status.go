package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	syncengine "github.com/iudanet/devsync/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	sent, err := c.engine.ForceSync(ctx)
	if err != nil {
		if errors.Is(err, syncengine.ErrOffline) {
			return fmt.Errorf("relay is unreachable, records stay queued")
		}
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if sent == 0 {
		c.io.Println("✓ Nothing to send, relay is up to date")
		return nil
	}
	c.io.Printf("Sent %d record(s)\n", sent)

	c.waitSettled(ctx)
	if st := c.engine.State(); st.Pending == 0 {
		c.io.Println("✓ All records acknowledged")
	}
	return nil
}

func (c *Cli) runStatus() error {
	st := c.engine.State()

	c.io.Println("=== Sync Status ===")
	c.io.Println()
	c.io.Printf("User:        %s\n", c.userID)
	c.io.Printf("Device:      %s\n", c.engine.DeviceID())
	c.io.Printf("Connection:  %s\n", st.Connection)
	c.io.Printf("Online:      %t\n", st.Online)
	c.io.Printf("Pending:     %d\n", st.Pending)
	if len(st.Provisional) > 0 {
		c.io.Printf("Provisional: %v\n", st.Provisional)
	}

	if len(st.Conflicts) > 0 {
		c.io.Println()
		c.io.Printf("⚠️  %d unresolved conflict(s), run 'client conflicts' for details\n", len(st.Conflicts))
	}

	if len(st.Errors) > 0 {
		c.io.Println()
		c.io.Println("Recent errors:")
		for _, issue := range st.Errors {
			c.io.Printf("  %s [%s] %s %s\n", issue.At.Format(time.RFC3339), issue.Kind, issue.RecordID, issue.Message)
		}
	}

	if !st.HasIssues() && st.Pending == 0 {
		c.io.Println()
		c.io.Println("✓ All data synchronized")
	}
	return nil
}

// runWatch печатает изменения состояния до отмены ctx
func (c *Cli) runWatch(ctx context.Context) error {
	states, unsubscribe := c.engine.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-states:
			if !ok {
				return nil
			}
			c.io.Printf("connection=%s online=%t pending=%d conflicts=%d errors=%d\n",
				st.Connection, st.Online, st.Pending, len(st.Conflicts), len(st.Errors))
		}
	}
}

func (c *Cli) runDevice() error {
	c.io.Println(c.engine.DeviceID())
	return nil
}
