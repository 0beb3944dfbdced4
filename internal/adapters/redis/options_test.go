package redis

import (
	"testing"
	"time"

	"github.com/example/schemapilot/internal/config"
)

func TestClientOptions_FailFast(t *testing.T) {
	opts := clientOptions(config.CacheConfig{Host: "cache", Port: 6380, DB: 3, Password: "pw"})

	if opts.Addr != "cache:6380" || opts.DB != 3 || opts.Password != "pw" {
		t.Errorf("connection options = %s db=%d", opts.Addr, opts.DB)
	}
	if opts.DialTimeout != dialTimeout || opts.ReadTimeout != ioTimeout || opts.WriteTimeout != ioTimeout {
		t.Errorf("timeouts = dial %v read %v write %v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
	if opts.MaxRetries != -1 {
		t.Errorf("MaxRetries = %d, want -1 (disabled)", opts.MaxRetries)
	}
	if dialTimeout > time.Second || ioTimeout > time.Second {
		t.Errorf("cache timeouts must stay under a second")
	}
}
