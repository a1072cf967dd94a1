package gocommand

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	custodycommand "github.com/goliatone/go-custody/command"
	custodyquery "github.com/goliatone/go-custody/query"
)

// CustodyBackend is the surface a deployed custody service exposes to the
// dispatcher. *core.Service satisfies it.
type CustodyBackend interface {
	custodycommand.MutatingService
	custodyquery.LedgerReader
	custodyquery.CustodyReader
}

type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterCustodyHandlers registers and subscribes every custody command and
// query. The event listing query is only wired when events is non-nil. On
// failure the subscriptions made so far are released.
func RegisterCustodyHandlers(
	adapter *RegistryAdapter,
	backend CustodyBackend,
	events custodyquery.EventReader,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("gocommand: custody backend is required")
	}

	steps := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewDepositCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewWithdrawCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewTransferCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewTransferFromCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewApproveCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewIncreaseAllowanceCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewDecreaseAllowanceCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewMintCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewBurnFromCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewPauseCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewUnpauseCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewGrantRoleCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewRevokeRoleCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, custodycommand.NewRenounceRoleCommand(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewTotalSupplyQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewBalanceQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewAllowanceQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewHasRoleQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewIsDepositedQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewClaimAmountQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewListRegistryQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewStatusQuery(backend), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewAuditSupplyQuery(backend), runnerOpts...)
		},
	}
	if events != nil {
		steps = append(steps, func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, custodyquery.NewListEventsQuery(events), runnerOpts...)
		})
	}

	subscriptions := make(Subscriptions, 0, len(steps))
	for _, step := range steps {
		subscription, err := step()
		if err != nil {
			subscriptions.Unsubscribe()
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}
