package cli

import (
	"context"
	"errors"
	"fmt"

	syncengine "github.com/iudanet/devsync/internal/client/sync"
	"github.com/iudanet/devsync/internal/models"
)

func (c *Cli) runConflicts() error {
	conflicts := c.engine.Conflicts()
	if len(conflicts) == 0 {
		c.io.Println("No unresolved conflicts.")
		return nil
	}

	c.io.Printf("Found %d conflict(s):\n", len(conflicts))
	c.io.Println()
	for i, conflict := range conflicts {
		c.io.Printf("%d. %s (%s)\n", i+1, conflict.ID, conflict.ConflictType)
		c.io.Printf("   Local:  %s\n", describeRecord(conflict.LocalRecord))
		c.io.Printf("   Remote: %s\n", describeRecord(conflict.RemoteRecord))
		c.io.Println()
	}
	c.io.Println("Use 'client resolve <id> <local|remote|merge>' to resolve a conflict.")
	return nil
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("expected conflict ID. Usage: client resolve <id> [local|remote|merge]")
	}
	id := args[0]

	var policyName string
	switch {
	case len(args) == 2:
		policyName = args[1]
	case c.io.Interactive():
		input, err := c.io.ReadInput("Policy (local, remote, merge): ")
		if err != nil {
			return fmt.Errorf("failed to read policy: %w", err)
		}
		policyName = input
	default:
		return fmt.Errorf("missing policy. Usage: client resolve <id> <local|remote|merge>")
	}

	policy, err := models.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	if policy == models.PolicyManual {
		return fmt.Errorf("manual policy leaves the conflict unresolved, choose local, remote or merge")
	}

	if err := c.engine.Resolve(ctx, id, policy); err != nil {
		if errors.Is(err, syncengine.ErrConflictNotFound) {
			return fmt.Errorf("no unresolved conflict with ID: %s", id)
		}
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	c.io.Printf("Resolved %s with %s policy\n", id, policy)

	c.waitSettled(ctx)
	return nil
}
