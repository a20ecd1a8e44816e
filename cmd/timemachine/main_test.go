package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MikeSquared-Agency/timemachine/internal/config"
)

func TestBusDrainTimeoutCoversOneGeneration(t *testing.T) {
	cfg := config.Config{ModelTimeout: 90 * time.Second}

	assert.Greater(t, busDrainTimeout(cfg), 2*cfg.ModelTimeout)
}
