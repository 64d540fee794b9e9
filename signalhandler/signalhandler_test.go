package signalhandler

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestSetupHandlerCancelsOnSignal(t *testing.T) {
	ctx, cancel := SetupHandler(context.Background())
	defer cancel()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("Cannot send signal: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Context should be cancelled after SIGINT")
	}
}

func TestGetOptimalProcs(t *testing.T) {
	if n := GetOptimalProcs(); n < 1 {
		t.Errorf("Should use at least one worker, uses %d", n)
	}
}
