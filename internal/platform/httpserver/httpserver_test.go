package httpserver

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentwise/internal/platform/config"
)

func TestNew(t *testing.T) {
	srv := New(config.Server{
		Addr:              ":8081",
		ReadHeaderTimeout: 2 * time.Second,
		RequestTimeout:    30 * time.Second,
	}, http.NotFoundHandler(), slog.Default())

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 2*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, srv.ReadTimeout)
	assert.Equal(t, 35*time.Second, srv.WriteTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
	assert.NotNil(t, srv.ErrorLog)
}

func TestNew_NoRequestTimeout(t *testing.T) {
	srv := New(config.Server{Addr: ":8081"}, http.NotFoundHandler(), nil)
	assert.Zero(t, srv.WriteTimeout)
	assert.Nil(t, srv.ErrorLog)
}
