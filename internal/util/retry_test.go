package util

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"EAGAIN", syscall.EAGAIN, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"EIO", syscall.EIO, true},
		{"ENOENT not retryable", syscall.ENOENT, false},
		{"EPERM not retryable", syscall.EPERM, false},
		{"timeout in message", errors.New("connection timeout"), true},
		{"broken pipe in message", errors.New("write: broken pipe"), true},
		{"host down in message", errors.New("mount: host is down"), true},
		{"generic error not retryable", errors.New("invalid argument"), false},
		{"PathError with ETIMEDOUT", &os.PathError{Op: "open", Path: "/x", Err: syscall.ETIMEDOUT}, true},
		{"PathError with ENOENT", &os.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, false},
		{"LinkError with EIO", &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EIO}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func testRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 5 * time.Millisecond,
		MaxWait:     50 * time.Millisecond,
	}
}

func TestRetryWithBackoff_ImmediateSuccess(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(testRetryConfig(), func() (int, error) {
		attempts++
		return 42, nil
	}, "test op")

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(testRetryConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", syscall.ETIMEDOUT
		}
		return "ok", nil
	}, "test op")

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "ok" {
		t.Errorf("expected %q, got %q", "ok", result)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(testRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ETIMEDOUT
	}, "test op")

	if err == nil {
		t.Fatal("expected error after max attempts, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, syscall.ETIMEDOUT) {
		t.Errorf("expected wrapped ETIMEDOUT, got %v", err)
	}
}

func TestRetryWithBackoff_NonRetryableFailsFast(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(testRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ENOENT
	}, "test op")

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetry_NoReturnValue(t *testing.T) {
	attempts := 0
	err := Retry(testRetryConfig(), func() error {
		attempts++
		if attempts < 2 {
			return syscall.ETIMEDOUT
		}
		return nil
	}, "test op")

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryableRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.json")
	dst := filepath.Join(dir, "b.json")
	if err := os.WriteFile(src, []byte("{}"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := RetryableRename(src, dst, testRetryConfig()); err != nil {
		t.Fatalf("RetryableRename failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("expected destination to exist, got %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("expected source to be gone, got %v", err)
	}
}

func TestNetworkRetryConfig(t *testing.T) {
	cfg := NetworkRetryConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialWait != 200*time.Millisecond {
		t.Errorf("expected InitialWait=200ms, got %v", cfg.InitialWait)
	}
	if cfg.MaxWait != 10*time.Second {
		t.Errorf("expected MaxWait=10s, got %v", cfg.MaxWait)
	}
}
