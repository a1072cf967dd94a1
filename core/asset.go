package core

import "context"

// AssetContract is the non-fungible collection whose items the vault holds.
type AssetContract interface {
	Address() Address
	OwnerOf(ctx context.Context, id CollateralID) (Address, error)
	GetApproved(ctx context.Context, id CollateralID) (Address, error)
	IsApprovedForAll(ctx context.Context, owner Address, operator Address) bool
	SafeTransferFrom(ctx context.Context, operator Address, from Address, to Address, id CollateralID, data []byte) error
}

// NonFungibleReceiver is notified when an item is safe-transferred to its
// address. A non-nil error aborts the transfer.
type NonFungibleReceiver interface {
	OnNonFungibleReceived(ctx context.Context, operator Address, from Address, id CollateralID, data []byte) error
}

// ReceiverRegistry is implemented by collections that deliver receiver
// callbacks to registered addresses. Registration joins the transaction
// carried by ctx and must refuse to replace an existing receiver.
type ReceiverRegistry interface {
	RegisterReceiver(ctx context.Context, address Address, receiver NonFungibleReceiver) error
}

// ExecutorBound is implemented by collaborators that run on an executor.
type ExecutorBound interface {
	Executor() *Executor
}
