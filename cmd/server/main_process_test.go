package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMainHelperProcess runs main when spawned by runMainBinary
func TestMainHelperProcess(t *testing.T) {
	if os.Getenv("BOOKMARKET_MAIN_HELPER") != "1" {
		t.Skip("helper process only")
	}
	main()
}

// runMainBinary boots the server binary against a throwaway Redis and an
// unreachable database, with extra environment on top.
func runMainBinary(t *testing.T, extra ...string) (string, error) {
	t.Helper()
	mr := miniredis.RunT(t)

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainHelperProcess$")
	cmd.Env = append(os.Environ(),
		"BOOKMARKET_MAIN_HELPER=1",
		"SERVER_ENV=development",
		"REDIS_URL=redis://"+mr.Addr(),
		"DB_HOST=127.0.0.1",
		"DB_PORT=1",
		"DB_SSLMODE=disable",
		"STORAGE_ENDPOINT=127.0.0.1:1",
		"RABBITMQ_URL=",
	)
	cmd.Env = append(cmd.Env, extra...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func requireExitFailure(t *testing.T, err error) {
	t.Helper()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v", err)
	assert.NotEqual(t, 0, exitErr.ExitCode())
}

func TestMainProcess_ExitsOnZeroPasswordResetLimit(t *testing.T) {
	stderr, err := runMainBinary(t, "PASSWORD_RESET_RATE_LIMIT=0", "SUPREME_ADMIN_EMAIL=root@bookmarket.test")
	requireExitFailure(t, err)
	assert.Contains(t, stderr, "failed to initialize password reset limiter")
}

func TestMainProcess_ExitsOnZeroAuthLimit(t *testing.T) {
	stderr, err := runMainBinary(t, "AUTH_RATE_LIMIT=0", "SUPREME_ADMIN_EMAIL=root@bookmarket.test")
	requireExitFailure(t, err)
	assert.Contains(t, stderr, "failed to initialize auth limiter")
}

func TestMainProcess_ExitsOnMalformedSessionKey(t *testing.T) {
	stderr, err := runMainBinary(t, "SESSION_ENCRYPTION_KEY=not-hex")
	requireExitFailure(t, err)
	assert.Contains(t, stderr, "failed to initialize session store")
}

func TestMainProcess_ExitsOnInvalidPortWithoutSupremeAdmin(t *testing.T) {
	stderr, err := runMainBinary(t, "SERVER_PORT=invalid-port", "SUPREME_ADMIN_EMAIL=")
	requireExitFailure(t, err)
	assert.Contains(t, stderr, "SUPREME_ADMIN_EMAIL is not set")
}
