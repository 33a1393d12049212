package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду args[0] с аргументами args[1:]
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		PrintUsage(c.io)
		return fmt.Errorf("missing command")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "write":
		return c.runWrite(ctx, rest)
	case "remove", "rm":
		return c.runRemove(ctx, rest)
	case "get":
		return c.runGet(rest)
	case "list", "ls":
		return c.runList(rest)
	case "conflicts":
		return c.runConflicts()
	case "resolve":
		return c.runResolve(ctx, rest)
	case "sync":
		return c.runSync(ctx)
	case "status":
		return c.runStatus()
	case "watch":
		return c.runWatch(ctx)
	case "device":
		return c.runDevice()
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// IsCommand true для известных команд
func IsCommand(name string) bool {
	switch name {
	case "write", "remove", "rm", "get", "list", "ls", "conflicts", "resolve", "sync", "status", "watch", "device":
		return true
	}
	return false
}
