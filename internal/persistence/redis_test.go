package persistence

import (
	"testing"
	"time"

	"github.com/spec-kit/patient-flow/internal/config"
)

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.RedisConfig
		addr        string
		password    string
		db          int
		poolSize    int
		dialTimeout time.Duration
		clientName  string
	}{
		{
			name:        "host and port",
			cfg:         config.RedisConfig{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 4, DialTimeoutSeconds: 3, ClientName: "patient-flow-service"},
			addr:        "cache:6379",
			password:    "pw",
			db:          2,
			poolSize:    4,
			dialTimeout: 3 * time.Second,
			clientName:  "patient-flow-service",
		},
		{
			name:       "url carries credentials and db",
			cfg:        config.RedisConfig{Addr: "redis://:from-url@cache:6380/5", Password: "ignored", DB: 1, ClientName: "flowctl"},
			addr:       "cache:6380",
			password:   "from-url",
			db:         5,
			clientName: "flowctl",
		},
		{
			name:     "url without db falls back to config",
			cfg:      config.RedisConfig{Addr: "redis://cache:6379", Password: "pw", DB: 3},
			addr:     "cache:6379",
			password: "pw",
			db:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := clientOptions(tt.cfg)
			if err != nil {
				t.Fatalf("clientOptions: %v", err)
			}
			if opts.Addr != tt.addr {
				t.Errorf("addr = %q, want %q", opts.Addr, tt.addr)
			}
			if opts.Password != tt.password {
				t.Errorf("password = %q, want %q", opts.Password, tt.password)
			}
			if opts.DB != tt.db {
				t.Errorf("db = %d, want %d", opts.DB, tt.db)
			}
			if tt.poolSize > 0 && opts.PoolSize != tt.poolSize {
				t.Errorf("pool size = %d, want %d", opts.PoolSize, tt.poolSize)
			}
			if tt.dialTimeout > 0 && opts.DialTimeout != tt.dialTimeout {
				t.Errorf("dial timeout = %v, want %v", opts.DialTimeout, tt.dialTimeout)
			}
			if opts.ClientName != tt.clientName {
				t.Errorf("client name = %q, want %q", opts.ClientName, tt.clientName)
			}
		})
	}

	if _, err := clientOptions(config.RedisConfig{Addr: "redis://cache:6379/not-a-db"}); err == nil {
		t.Error("expected a parse error for a bad db path")
	}
}
