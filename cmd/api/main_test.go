package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appconfig "github.com/legendmotors/skywell-leads/internal/config"
)

func TestNewServerCoversCRMTimeout(t *testing.T) {
	cfg := &appconfig.Config{Port: "8081", CRMTimeout: 30 * time.Second}
	h := http.NewServeMux()

	srv := newServer(cfg, h)

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 45*time.Second, srv.WriteTimeout)
	assert.Greater(t, srv.WriteTimeout, cfg.CRMTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.NotNil(t, srv.Handler)
}
