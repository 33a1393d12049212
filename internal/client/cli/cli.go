// Package cli команды клиента devsync поверх движка синхронизации.
package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iudanet/devsync/internal/client/iocli"
	syncengine "github.com/iudanet/devsync/internal/client/sync"
	"github.com/iudanet/devsync/internal/models"
)

//go:generate moq -out engine_mock.go . Engine

// Engine операции движка, используемые командами
type Engine interface {
	DeviceID() string
	Write(ctx context.Context, id, recordType string, payload json.RawMessage) (*models.SyncRecord, error)
	WriteProvisional(ctx context.Context, id, recordType string, payload json.RawMessage, ttl time.Duration) (*models.SyncRecord, error)
	Remove(ctx context.Context, id string) error
	Read(id string) (*models.SyncRecord, bool)
	ReadAllByType(recordType string) []*models.SyncRecord
	Conflicts() []*models.SyncConflict
	Resolve(ctx context.Context, conflictID string, policy models.Policy) error
	ForceSync(ctx context.Context) (int, error)
	State() syncengine.State
	Subscribe() (<-chan syncengine.State, func())
}

type Cli struct {
	io     iocli.IO
	engine Engine
	userID string
	settle time.Duration // сколько мутирующие команды ждут доставки очереди
}

func New(io iocli.IO, engine Engine, userID string, settle time.Duration) *Cli {
	return &Cli{
		io:     io,
		engine: engine,
		userID: userID,
		settle: settle,
	}
}

func PrintUsage(io iocli.IO) {
	io.Println("devsync client")
	io.Println()
	io.Println("Usage:")
	io.Println("  client [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  -version              Show version information")
	io.Println("  -server URL           Relay URL (default: http://localhost:8080)")
	io.Println("  -db PATH              Path to local database (default: devsync-client.db)")
	io.Println("  -user ID              User id, records are synchronized between devices of one user")
	io.Println("  -token TOKEN          Bearer token issued by the relay")
	io.Println("  -policy POLICY        Conflict policy: local, remote, merge, manual (default: remote)")
	io.Println("  -settle DURATION      How long mutating commands wait for delivery (default: 5s)")
	io.Println("  -log-level LEVEL      debug, info, warn, error (default: warn)")
	io.Println("  -log-file PATH        Write logs to a rotating file")
	io.Println()
	io.Println("Every option can also be set as DEVSYNC_<NAME> in the environment or in .env")
	io.Println()
	io.Println("Commands:")
	io.Println("  write [-ttl D] <id> <type> <json|->  Write a record ('-' reads the payload from stdin)")
	io.Println("  remove <id>                          Delete a record (tombstone)")
	io.Println("  get <id>                             Show a record")
	io.Println("  list <type>                          List records of a type")
	io.Println("  conflicts                            List unresolved conflicts")
	io.Println("  resolve <id> [policy]                Resolve a conflict")
	io.Println("  sync                                 Resend every record the relay has not acknowledged")
	io.Println("  status                               Show connection, queue and errors")
	io.Println("  watch                                Print state changes until interrupted")
	io.Println("  device                               Show the id of this device")
	io.Println()
	io.Println("Examples:")
	io.Println("  client -user alice write note-1 note '{\"text\":\"hello\"}'")
	io.Println("  echo '{\"done\":true}' | client -user alice write task-7 task -")
	io.Println("  client -user alice -policy manual conflicts")
	io.Println("  client -user alice resolve note-1 merge")
}
