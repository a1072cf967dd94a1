package gologger

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goliatone/go-custody/core"
	glog "github.com/goliatone/go-logger/glog"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("custody", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("custody", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("custody", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestGoJobBridgeCompatibility(t *testing.T) {
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	_, _, jobProvider, jobLogger := ResolveForJob("custody", provider, nil)
	if jobProvider == nil {
		t.Fatalf("expected go-job provider bridge")
	}
	if jobLogger == nil {
		t.Fatalf("expected go-job logger bridge")
	}

	bridged := jobProvider.GetLogger("custody")
	bridged.Info("hello", "k", "v")

	captured := providerLogger.lastInfo
	if captured.msg != "hello" {
		t.Fatalf("expected bridged message, got %q", captured.msg)
	}
	if captured.args[0] != "k" || captured.args[1] != "v" {
		t.Fatalf("expected bridged args, got %#v", captured.args)
	}
}

func TestEventLogSink_WritesOneLinePerEvent(t *testing.T) {
	logger := &capturingLogger{id: "sink"}
	sink := NewEventLogSink("custody", nil, logger)
	ledger := common.HexToAddress("0x00000000000000000000000000000000000000e1")
	holder := common.HexToAddress("0x00000000000000000000000000000000000000e2")

	err := sink.HandleEvents(context.Background(), []core.Event{
		{Sequence: 1, Type: core.EventRoleGranted, Contract: ledger, To: holder, Role: core.RoleMint},
		{Sequence: 2, Type: core.EventClaimTransfer, Contract: ledger, To: holder, Amount: core.NewAmount(25)},
	})
	if err != nil {
		t.Fatalf("handle events: %v", err)
	}
	if logger.infoCount != 2 {
		t.Fatalf("expected 2 log lines, got %d", logger.infoCount)
	}
	fields := map[any]any{}
	for i := 0; i+1 < len(logger.lastInfo.args); i += 2 {
		fields[logger.lastInfo.args[i]] = logger.lastInfo.args[i+1]
	}
	if fields["amount"] != "25" || fields["to"] != holder.Hex() {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if _, ok := fields["from"]; ok {
		t.Fatalf("expected zero from address to be omitted for a mint")
	}
}

func TestEventFields_UsesRoleNames(t *testing.T) {
	fields := EventFields(core.Event{Type: core.EventRoleRevoked, Role: core.RolePause})
	if fields[len(fields)-2] != "role" || fields[len(fields)-1] != "pause" {
		t.Fatalf("expected trailing role field, got %#v", fields)
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id        string
	lastInfo  infoCall
	infoCount int
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.infoCount++
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
