package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := loadClient([]string{"status"}, io.Discard, lookupFrom(nil), "")
	require.NoError(t, err)

	want := DefaultClientConfig()
	want.Args = []string{"status"}
	assert.Equal(t, &want, cfg)
}

func TestLoadClient_Precedence(t *testing.T) {
	envFile := writeEnvFile(t, "DEVSYNC_SERVER=http://from-file:1\nDEVSYNC_USER=file-user\nDEVSYNC_POLICY=merge\n")
	lookup := lookupFrom(map[string]string{
		"DEVSYNC_USER":   "env-user",
		"DEVSYNC_SETTLE": "2s",
	})

	cfg, err := loadClient([]string{"-policy", "manual", "write", "id", "note", "{}"}, io.Discard, lookup, envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:1", cfg.ServerURL, ".env overrides defaults")
	assert.Equal(t, "env-user", cfg.UserID, "environment overrides .env")
	assert.Equal(t, "manual", cfg.Policy, "flags override everything")
	assert.Equal(t, 2*time.Second, cfg.Settle)
	assert.Equal(t, []string{"write", "id", "note", "{}"}, cfg.Args)
}

func TestLoadClient_Errors(t *testing.T) {
	tests := []struct {
		env  map[string]string
		name string
		args []string
	}{
		{name: "bad duration env", env: map[string]string{"DEVSYNC_ACK_TIMEOUT": "soon"}},
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "bad duration flag", args: []string{"-settle", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadClient(tt.args, io.Discard, lookupFrom(tt.env), "")
			require.Error(t, err)
		})
	}
}

func TestLoadClient_MissingEnvFileIgnored(t *testing.T) {
	_, err := loadClient(nil, io.Discard, lookupFrom(nil), filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate      func(*ClientConfig)
		name        string
		requireUser bool
		wantErr     bool
	}{
		{name: "valid", mutate: func(c *ClientConfig) { c.UserID = "alice" }, requireUser: true},
		{name: "user not required", mutate: func(c *ClientConfig) {}, requireUser: false},
		{name: "missing user", mutate: func(c *ClientConfig) {}, requireUser: true, wantErr: true},
		{name: "invalid user", mutate: func(c *ClientConfig) { c.UserID = "a b" }, requireUser: true, wantErr: true},
		{name: "unknown policy", mutate: func(c *ClientConfig) { c.Policy = "newest" }, wantErr: true},
		{name: "zero settle", mutate: func(c *ClientConfig) { c.Settle = 0 }, wantErr: true},
		{name: "negative ack timeout", mutate: func(c *ClientConfig) { c.AckTimeout = -time.Second }, wantErr: true},
		{name: "empty db", mutate: func(c *ClientConfig) { c.DBPath = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			tt.mutate(&cfg)

			err := cfg.Validate(tt.requireUser)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadServer(t *testing.T) {
	envFile := writeEnvFile(t, "DEVSYNC_JWT_SECRET=file-secret\nDEVSYNC_RATE_LIMIT=10\n")
	lookup := lookupFrom(map[string]string{"DEVSYNC_ADDR": ":9000"})

	cfg, err := loadServer([]string{"-db", "relay.db", "-token-ttl", "1h", "-issue-token", "alice"}, io.Discard, lookup, envFile)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "relay.db", cfg.DBPath)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "alice", cfg.IssueToken)
	assert.NoError(t, cfg.Validate())
}

func TestLoadServer_Errors(t *testing.T) {
	_, err := loadServer([]string{"extra"}, io.Discard, lookupFrom(nil), "")
	require.Error(t, err)

	_, err = loadServer(nil, io.Discard, lookupFrom(map[string]string{"DEVSYNC_RATE_LIMIT": "many"}), "")
	require.Error(t, err)
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*ServerConfig)
		name    string
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *ServerConfig) {}},
		{name: "issue token without secret", mutate: func(c *ServerConfig) { c.IssueToken = "alice" }, wantErr: true},
		{name: "empty addr", mutate: func(c *ServerConfig) { c.Addr = "" }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *ServerConfig) { c.RateLimit = -1 }, wantErr: true},
		{name: "negative ttl", mutate: func(c *ServerConfig) { c.TokenTTL = -time.Second }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *ServerConfig) { c.ShutdownTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
