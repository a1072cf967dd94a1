package gologger

import (
	"context"

	"github.com/goliatone/go-custody/core"
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the custody logger pair and the go-job bridges the
// projection worker is started with.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// EventLogSink writes one structured line per committed custody event.
type EventLogSink struct {
	logger glog.Logger
}

func NewEventLogSink(name string, provider glog.LoggerProvider, logger glog.Logger) *EventLogSink {
	_, resolved := Resolve(name, provider, logger)
	return &EventLogSink{logger: resolved}
}

func (s *EventLogSink) HandleEvents(ctx context.Context, events []core.Event) error {
	if s == nil || s.logger == nil {
		return nil
	}
	logger := s.logger.WithContext(ctx)
	for _, evt := range events {
		logger.Info("custody event committed", EventFields(evt)...)
	}
	return nil
}

// EventFields flattens evt into glog key/value pairs, leaving out the zero
// fields its type does not use.
func EventFields(evt core.Event) []any {
	fields := []any{
		"sequence", evt.Sequence,
		"type", string(evt.Type),
		"contract", evt.Contract.Hex(),
	}
	if evt.From != core.ZeroAddress {
		fields = append(fields, "from", evt.From.Hex())
	}
	if evt.To != core.ZeroAddress {
		fields = append(fields, "to", evt.To.Hex())
	}
	if evt.Operator != core.ZeroAddress {
		fields = append(fields, "operator", evt.Operator.Hex())
	}
	switch evt.Type {
	case core.EventClaimTransfer, core.EventClaimApproval:
		fields = append(fields, "amount", core.FormatAmount(evt.Amount))
	case core.EventCollateralDeposited, core.EventCollateralWithdrawn:
		fields = append(fields, "collateral_id", evt.CollateralID.String(), "amount", core.FormatAmount(evt.Amount))
	case core.EventAssetTransfer, core.EventAssetApproval:
		fields = append(fields, "collateral_id", evt.CollateralID.String())
	case core.EventAssetApprovalForAll:
		fields = append(fields, "approved", evt.Approved)
	case core.EventRoleGranted, core.EventRoleRevoked:
		fields = append(fields, "role", core.RoleName(evt.Role))
	}
	return fields
}

var _ core.EventSink = (*EventLogSink)(nil)
