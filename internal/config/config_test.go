package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/hydrate/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func errorCode(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Code
	}
	return ""
}

func TestNewDefaults(t *testing.T) {
	c := New()

	if c.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q", c.Server.Addr)
	}
	if c.Gateway.Prefix != DefaultGatewayPrefix || c.Gateway.Codec != "json" {
		t.Errorf("Gateway = %+v", c.Gateway)
	}
	if c.Hydration.Mode != ModeInline || c.Hydration.Store != StoreMemory {
		t.Errorf("Hydration = %+v", c.Hydration)
	}
	if c.Hydration.TTL.Std() != DefaultPayloadTTL {
		t.Errorf("TTL = %v", c.Hydration.TTL.Std())
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `{
		"name": "demo",
		"server": {"addr": ":8080", "renderTimeout": "2s"},
		"gateway": {"codec": "gojson", "timeout": "1500ms", "rateLimit": 5},
		"hydration": {"mode": "store", "store": "redis"},
		"log": {"level": "debug", "format": "json"}
	}`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Name != "demo" || c.Server.Addr != ":8080" {
		t.Errorf("c = %+v", c)
	}
	if c.Server.RenderTimeout.Std() != 2*time.Second {
		t.Errorf("RenderTimeout = %v", c.Server.RenderTimeout.Std())
	}
	if c.Gateway.Timeout.Std() != 1500*time.Millisecond {
		t.Errorf("Gateway.Timeout = %v", c.Gateway.Timeout.Std())
	}
	if c.Gateway.Burst != 6 {
		t.Errorf("Burst = %d, want 6", c.Gateway.Burst)
	}
	if c.Hydration.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q", c.Hydration.Redis.Addr)
	}
	if c.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path = %q", c.Path())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"malformed", `{"server":`, "E120"},
		{"numeric duration", `{"gateway": {"timeout": 5}}`, "E120"},
		{"bad duration", `{"gateway": {"timeout": "soon"}}`, "E120"},
		{"bad mode", `{"hydration": {"mode": "telepathy"}}`, "E122"},
		{"bad store", `{"hydration": {"store": "s3"}}`, "E122"},
		{"bad codec", `{"gateway": {"codec": "xml"}}`, "E122"},
		{"bad prefix", `{"gateway": {"prefix": "fn"}}`, "E122"},
		{"negative timeout", `{"gateway": {"timeout": "-1s"}}`, "E122"},
		{"bad level", `{"log": {"level": "loud"}}`, "E122"},
		{"bad format", `{"log": {"format": "xml"}}`, "E122"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if code := errorCode(err); code != tt.code {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("Exists on empty dir")
	}
	_, err := Load(dir)
	if code := errorCode(err); code != "E121" {
		t.Errorf("err = %v, want E121", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	c := New()
	c.Name = "€-shop"
	c.Gateway.Timeout = Duration(3 * time.Second)

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := c.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"timeout": "3s"`) {
		t.Errorf("duration not written as string:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != c.Name || loaded.Gateway.Timeout != c.Gateway.Timeout {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}

	LogConfig{Level: "debug", Format: "json"}.NewLogger(&buf).Debug("shown", "killer", "€a")
	if !strings.Contains(buf.String(), `"killer":"€a"`) {
		t.Errorf("json log = %s", buf.String())
	}
}
