package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_UsesDefaultMessage(t *testing.T) {
	err := New(CodeBridgeMissingField, WithContext("USDC Ethereum->Optimism"))

	if err.Message != messages[CodeBridgeMissingField] {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "USDC Ethereum->Optimism") {
		t.Errorf("Error() = %q, want context", err.Error())
	}
}

func TestFaultKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Fault
	}{
		{"nil", nil, ""},
		{"config", Config("missing settings.sleepTime"), FaultConfig},
		{"transport", External(CodeBridgeConnectionFailed, "", errors.New("dial")), FaultTransport},
		{"circuit", New(CodeCircuitOpen), FaultTransport},
		{"invalid body", New(CodeBridgeInvalidResponse), FaultResponse},
		{"missing field", New(CodeBridgeMissingField), FaultResponse},
		{"notifier", New(CodeTelegramRateLimited), FaultNotifier},
		{"wrapped", fmt.Errorf("job: %w", New(CodeBridgeMissingField)), FaultResponse},
		{"deadline", context.DeadlineExceeded, FaultTimeout},
		{"plain", errors.New("boom"), FaultInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FaultKind(tt.err); got != tt.want {
				t.Errorf("FaultKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	orig := New(CodeBridgeInvalidResponse)
	wrapped := Wrap(orig, CodeInternalError, "quote")

	if wrapped != orig {
		t.Fatal("expected the same AppError back")
	}
	if wrapped.Context != "quote" {
		t.Errorf("Context = %q", wrapped.Context)
	}
	if Wrap(nil, CodeInternalError, "") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestIs_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeCircuitOpen, WithContext("bridge")))
	if !errors.Is(err, New(CodeCircuitOpen)) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodeJobTimeout)) {
		t.Error("unexpected match on different code")
	}
}

func TestLogArgs(t *testing.T) {
	args := LogArgs(External(CodeBridgeConnectionFailed, "ctx", errors.New("refused")))
	joined := fmt.Sprint(args...)
	for _, want := range []string{"BRIDGE_CONNECTION_FAILED", "transport", "refused"} {
		if !strings.Contains(joined, want) {
			t.Errorf("LogArgs missing %q: %v", want, args)
		}
	}

	plain := LogArgs(errors.New("boom"))
	if len(plain) != 4 || plain[3] != "boom" {
		t.Errorf("plain LogArgs = %v", plain)
	}
}
