package mongo

import (
	"testing"
	"time"

	"github.com/satriahrh/linksense/internal/config"
)

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.MongoConfig
		wantDB   string
		wantPool uint64
		wantDial time.Duration
	}{
		{
			name:     "zero config falls back to defaults",
			cfg:      config.MongoConfig{},
			wantDB:   config.DefaultMongoDatabase,
			wantPool: config.DefaultMongoPoolSize,
			wantDial: config.DefaultMongoDialTimeout,
		},
		{
			name: "explicit settings win",
			cfg: config.MongoConfig{
				URI:         "mongodb://db.internal:27017",
				Database:    "summaries",
				PoolSize:    40,
				DialTimeout: 2 * time.Second,
			},
			wantDB:   "summaries",
			wantPool: 40,
			wantDial: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, db := clientOptions(tt.cfg)

			if db != tt.wantDB {
				t.Errorf("database = %q, want %q", db, tt.wantDB)
			}
			if *opts.MaxPoolSize != tt.wantPool {
				t.Errorf("MaxPoolSize = %d, want %d", *opts.MaxPoolSize, tt.wantPool)
			}
			if *opts.ConnectTimeout != tt.wantDial {
				t.Errorf("ConnectTimeout = %v, want %v", *opts.ConnectTimeout, tt.wantDial)
			}
			if *opts.ServerSelectionTimeout != tt.wantDial {
				t.Errorf("ServerSelectionTimeout = %v, want %v", *opts.ServerSelectionTimeout, tt.wantDial)
			}
			if len(opts.Hosts) != 1 {
				t.Errorf("Expected one host from the URI, got %v", opts.Hosts)
			}
		})
	}
}
