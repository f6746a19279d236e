package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8000", cfg.Port)
	assert.Len(t, cfg.Services, 3)

	for name, svc := range cfg.Services {
		assert.NotEmpty(t, svc.BaseURL, name)
		// Every service feeds the round-robin balancer with at least
		// its own base URL
		assert.Equal(t, []string{svc.BaseURL}, svc.Instances, name)
	}
}

func TestLoadConfigInstanceList(t *testing.T) {
	t.Setenv("BOOK_SERVICE_INSTANCES", "http://book-1:8081, http://book-2:8081,")

	cfg := LoadConfig()

	assert.Equal(t, []string{"http://book-1:8081", "http://book-2:8081"}, cfg.Services["book"].Instances)
	// Services without an explicit list keep the single-instance default
	assert.Equal(t, []string{cfg.Services["user"].BaseURL}, cfg.Services["user"].Instances)
}
