package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected default fetch timeout 15s, got %v", cfg.FetchTimeout)
	}
	if cfg.CodeChefTimeout() != 30*time.Second {
		t.Errorf("Expected CodeChef timeout 30s, got %v", cfg.CodeChefTimeout())
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("Expected 5 retry attempts, got %d", cfg.RetryAttempts)
	}
	if cfg.RankPersistChunk != 100 {
		t.Errorf("Expected rank persist chunk 100, got %d", cfg.RankPersistChunk)
	}
	if cfg.CodeChefHostInterval != 5*time.Second {
		t.Errorf("Expected CodeChef host interval 5s, got %v", cfg.CodeChefHostInterval)
	}
	if cfg.CodeChefPreDelay != time.Second {
		t.Errorf("Expected CodeChef pre-request delay 1s, got %v", cfg.CodeChefPreDelay)
	}
}

func TestDurationEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "go duration", value: "1500ms", expected: 1500 * time.Millisecond},
		{name: "bare seconds", value: "7", expected: 7 * time.Second},
		{name: "garbage falls back", value: "soon", expected: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getDurationEnv("TEST_DURATION", time.Minute); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIntAndBoolEnv(t *testing.T) {
	t.Setenv("RETRY_ATTEMPTS", "3")
	t.Setenv("ENABLE_SCHEDULER", "false")

	cfg := Load()
	if cfg.RetryAttempts != 3 {
		t.Errorf("Expected 3 retry attempts, got %d", cfg.RetryAttempts)
	}
	if cfg.EnableScheduler {
		t.Error("Expected scheduler to be disabled")
	}
}
