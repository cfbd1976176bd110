package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "all flags", args: []string{"-a", "http://gw:9090", "-t", "5s", "-s", "bolt", "-f", "a.bolt", "-l", "debug"},
			expected: &Config{GatewayBaseURL: "http://gw:9090", GatewayTimeout: 5 * time.Second, StoreDriver: "bolt", StorePath: "a.bolt", LogLevel: "debug"}},
		{name: "foreign flags ignored", args: []string{"-c", "cfg.json", "-a", "http://gw"},
			expected: &Config{GatewayBaseURL: "http://gw"}},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
