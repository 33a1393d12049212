package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/devsync/internal/models"
)

func (c *Cli) runGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("missing record ID. Usage: client get <id>")
	}

	rec, ok := c.engine.Read(args[0])
	if !ok {
		return fmt.Errorf("record not found with ID: %s", args[0])
	}

	c.io.Printf("ID:       %s\n", rec.ID)
	c.io.Printf("Type:     %s\n", rec.RecordType)
	c.io.Printf("Version:  %d\n", rec.Version)
	c.io.Printf("Device:   %s\n", rec.OriginDeviceID)
	c.io.Printf("Modified: %s\n", formatMillis(rec.Timestamp))
	c.io.Printf("Checksum: %s\n", rec.Checksum)
	c.io.Println("Payload:")
	c.io.Println(indentPayload(rec.Payload))
	return nil
}

func (c *Cli) runList(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("missing record type. Usage: client list <type>")
	}
	recordType := args[0]

	records := c.engine.ReadAllByType(recordType)
	if len(records) == 0 {
		c.io.Printf("No records of type %s.\n", recordType)
		return nil
	}

	c.io.Printf("Found %d record(s) of type %s:\n", len(records), recordType)
	c.io.Println()
	for _, rec := range records {
		c.io.Printf("%s  v%d  %s\n", rec.ID, rec.Version, compactPayload(rec.Payload))
	}
	return nil
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func indentPayload(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "  ", "  "); err != nil {
		return "  " + string(payload)
	}
	return "  " + buf.String()
}

func compactPayload(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return string(payload)
	}
	return buf.String()
}

func describeRecord(rec *models.SyncRecord) string {
	if rec == nil {
		return "(none)"
	}
	if rec.IsTombstone() {
		return fmt.Sprintf("deleted, v%d from %s", rec.Version, rec.OriginDeviceID)
	}
	return fmt.Sprintf("v%d from %s: %s", rec.Version, rec.OriginDeviceID, compactPayload(rec.Payload))
}
