package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf"
)

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func TestServer_Run_ServerModeShutdown(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Mode = "server"
	cfg.Port = freePort(t)

	pdfService, err := pdf.NewService(cfg.MaxFileSize, dir, false)
	require.NoError(t, err)
	server, err := NewServer(cfg, pdfService)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", cfg.Address())
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond, "SSE server never accepted connections")

	cancel()

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

func TestServer_Run_ServerModePortInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Mode = "server"
	cfg.Port = listener.Addr().(*net.TCPAddr).Port

	pdfService, err := pdf.NewService(cfg.MaxFileSize, dir, false)
	require.NoError(t, err)
	server, err := NewServer(cfg, pdfService)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.ErrorContains(t, server.Run(ctx), "failed to serve SSE")
}
