package asset

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-custody/core"
	goerrors "github.com/goliatone/go-errors"
)

// Collection is an in-memory non-fungible collection. It runs on the same
// executor as the vault so a failing transfer reverts the whole deposit.
type Collection struct {
	address   core.Address
	executor  *core.Executor
	owners    map[core.CollateralID]core.Address
	balances  map[core.Address]uint64
	approvals map[core.CollateralID]core.Address
	operators map[core.Address]map[core.Address]bool
	receivers map[core.Address]core.NonFungibleReceiver
}

func NewCollection(executor *core.Executor, address core.Address) (*Collection, error) {
	if executor == nil {
		return nil, fmt.Errorf("asset collection: executor is required")
	}
	if address == core.ZeroAddress {
		return nil, badInput("collection address is the zero address")
	}
	return &Collection{
		address:   address,
		executor:  executor,
		owners:    map[core.CollateralID]core.Address{},
		balances:  map[core.Address]uint64{},
		approvals: map[core.CollateralID]core.Address{},
		operators: map[core.Address]map[core.Address]bool{},
		receivers: map[core.Address]core.NonFungibleReceiver{},
	}, nil
}

func (c *Collection) Address() core.Address {
	return c.address
}

func (c *Collection) Executor() *core.Executor {
	return c.executor
}

// RegisterReceiver routes safe transfers to address through receiver. The
// binding is part of the transaction carried by ctx and an address keeps its
// first receiver.
func (c *Collection) RegisterReceiver(ctx context.Context, address core.Address, receiver core.NonFungibleReceiver) error {
	if address == core.ZeroAddress {
		return badInput("receiver address is the zero address")
	}
	if receiver == nil {
		return badInput("receiver is required")
	}
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		if _, bound := c.receivers[address]; bound {
			return goerrors.New("asset collection: receiver already registered", goerrors.CategoryConflict).
				WithCode(http.StatusConflict).
				WithTextCode("ASSET_RECEIVER_BOUND").
				WithMetadata(map[string]any{"address": address.Hex()})
		}
		return core.PutState(ctx, c.receivers, address, receiver, true)
	})
}

func (c *Collection) OwnerOf(ctx context.Context, id core.CollateralID) (core.Address, error) {
	var (
		owner core.Address
		err   error
	)
	_ = c.executor.View(ctx, func(context.Context) error {
		owner, err = c.ownerOf(id)
		return nil
	})
	return owner, err
}

func (c *Collection) BalanceOf(ctx context.Context, owner core.Address) uint64 {
	var out uint64
	_ = c.executor.View(ctx, func(context.Context) error {
		out = c.balances[owner]
		return nil
	})
	return out
}

func (c *Collection) GetApproved(ctx context.Context, id core.CollateralID) (core.Address, error) {
	var (
		approved core.Address
		err      error
	)
	_ = c.executor.View(ctx, func(context.Context) error {
		if _, err = c.ownerOf(id); err != nil {
			return nil
		}
		approved = c.approvals[id]
		return nil
	})
	return approved, err
}

func (c *Collection) IsApprovedForAll(ctx context.Context, owner core.Address, operator core.Address) bool {
	var out bool
	_ = c.executor.View(ctx, func(context.Context) error {
		out = c.operators[owner][operator]
		return nil
	})
	return out
}

func (c *Collection) Mint(ctx context.Context, to core.Address, id core.CollateralID) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		if to == core.ZeroAddress {
			return badInput("mint recipient is the zero address")
		}
		if _, exists := c.owners[id]; exists {
			return goerrors.New(fmt.Sprintf("asset collection: token %s already minted", id), goerrors.CategoryConflict).
				WithCode(http.StatusConflict).
				WithTextCode("ASSET_ALREADY_MINTED")
		}
		if err := core.PutState(ctx, c.owners, id, to, true); err != nil {
			return err
		}
		if err := core.PutState(ctx, c.balances, to, c.balances[to]+1, true); err != nil {
			return err
		}
		return core.Emit(ctx, core.Event{
			Type:         core.EventAssetTransfer,
			Contract:     c.address,
			To:           to,
			Operator:     to,
			CollateralID: id,
		})
	})
}

func (c *Collection) Burn(ctx context.Context, caller core.Address, id core.CollateralID) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		owner, err := c.ownerOf(id)
		if err != nil {
			return err
		}
		if !c.authorized(caller, owner, id) {
			return notAuthorized(caller, id)
		}
		if err := c.clearApproval(ctx, id); err != nil {
			return err
		}
		if err := core.PutState(ctx, c.owners, id, core.ZeroAddress, false); err != nil {
			return err
		}
		if err := core.PutState(ctx, c.balances, owner, c.balances[owner]-1, c.balances[owner] > 1); err != nil {
			return err
		}
		return core.Emit(ctx, core.Event{
			Type:         core.EventAssetTransfer,
			Contract:     c.address,
			From:         owner,
			Operator:     caller,
			CollateralID: id,
		})
	})
}

func (c *Collection) Approve(ctx context.Context, caller core.Address, to core.Address, id core.CollateralID) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		owner, err := c.ownerOf(id)
		if err != nil {
			return err
		}
		if caller != owner && !c.operators[owner][caller] {
			return notAuthorized(caller, id)
		}
		if to == owner {
			return badInput("approval to current owner")
		}
		if err := core.PutState(ctx, c.approvals, id, to, to != core.ZeroAddress); err != nil {
			return err
		}
		return core.Emit(ctx, core.Event{
			Type:         core.EventAssetApproval,
			Contract:     c.address,
			From:         owner,
			To:           to,
			Operator:     caller,
			CollateralID: id,
		})
	})
}

func (c *Collection) SetApprovalForAll(ctx context.Context, caller core.Address, operator core.Address, approved bool) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		if caller == core.ZeroAddress || operator == core.ZeroAddress {
			return badInput("operator approval needs non-zero owner and operator")
		}
		if caller == operator {
			return badInput("approve to caller")
		}
		set, ok := c.operators[caller]
		if !ok {
			set = map[core.Address]bool{}
			if err := core.PutState(ctx, c.operators, caller, set, true); err != nil {
				return err
			}
		}
		if err := core.PutState(ctx, set, operator, true, approved); err != nil {
			return err
		}
		return core.Emit(ctx, core.Event{
			Type:     core.EventAssetApprovalForAll,
			Contract: c.address,
			From:     caller,
			To:       operator,
			Operator: caller,
			Approved: approved,
		})
	})
}

func (c *Collection) TransferFrom(ctx context.Context, operator core.Address, from core.Address, to core.Address, id core.CollateralID) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		return c.transfer(ctx, operator, from, to, id)
	})
}

// SafeTransferFrom transfers id and notifies a registered receiver at to.
// A receiver error reverts the transfer.
func (c *Collection) SafeTransferFrom(
	ctx context.Context,
	operator core.Address,
	from core.Address,
	to core.Address,
	id core.CollateralID,
	data []byte,
) error {
	return c.executor.Execute(ctx, func(ctx context.Context) error {
		if err := c.transfer(ctx, operator, from, to, id); err != nil {
			return err
		}
		receiver := c.receivers[to]
		if receiver == nil {
			return nil
		}
		return c.executor.Callout(ctx, func(ctx context.Context) error {
			return receiver.OnNonFungibleReceived(ctx, operator, from, id, data)
		})
	})
}

func (c *Collection) transfer(ctx context.Context, operator core.Address, from core.Address, to core.Address, id core.CollateralID) error {
	owner, err := c.ownerOf(id)
	if err != nil {
		return err
	}
	if owner != from {
		return goerrors.New("asset collection: transfer from incorrect owner", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.CustodyErrorBadInput).
			WithMetadata(map[string]any{"collateral_id": uint64(id), "from": from.Hex()})
	}
	if to == core.ZeroAddress {
		return badInput("transfer to the zero address")
	}
	if !c.authorized(operator, owner, id) {
		return notAuthorized(operator, id)
	}
	if err := c.clearApproval(ctx, id); err != nil {
		return err
	}
	if err := core.PutState(ctx, c.balances, from, c.balances[from]-1, c.balances[from] > 1); err != nil {
		return err
	}
	if err := core.PutState(ctx, c.balances, to, c.balances[to]+1, true); err != nil {
		return err
	}
	if err := core.PutState(ctx, c.owners, id, to, true); err != nil {
		return err
	}
	return core.Emit(ctx, core.Event{
		Type:         core.EventAssetTransfer,
		Contract:     c.address,
		From:         from,
		To:           to,
		Operator:     operator,
		CollateralID: id,
	})
}

func (c *Collection) ownerOf(id core.CollateralID) (core.Address, error) {
	owner, ok := c.owners[id]
	if !ok {
		return core.ZeroAddress, goerrors.New(fmt.Sprintf("asset collection: token %s does not exist", id), goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(core.CustodyErrorNotFound).
			WithMetadata(map[string]any{"collateral_id": uint64(id)})
	}
	return owner, nil
}

func (c *Collection) authorized(operator core.Address, owner core.Address, id core.CollateralID) bool {
	return operator == owner || c.approvals[id] == operator || c.operators[owner][operator]
}

func (c *Collection) clearApproval(ctx context.Context, id core.CollateralID) error {
	if _, ok := c.approvals[id]; !ok {
		return nil
	}
	return core.PutState(ctx, c.approvals, id, core.ZeroAddress, false)
}

func badInput(message string) error {
	return goerrors.New("asset collection: "+message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.CustodyErrorBadInput)
}

func notAuthorized(operator core.Address, id core.CollateralID) error {
	return goerrors.New("asset collection: caller is not token owner or approved", goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode(core.CustodyErrorTransferNotAuthorized).
		WithMetadata(map[string]any{"collateral_id": uint64(id), "operator": operator.Hex()})
}
