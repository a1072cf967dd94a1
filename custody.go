package custody

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/goliatone/go-custody/asset"
	"github.com/goliatone/go-custody/core"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Address = core.Address
type Amount = core.Amount
type CollateralID = core.CollateralID
type Role = core.Role
type Event = core.Event
type EventSink = core.EventSink
type Deployment = core.Deployment

type DepositRequest = core.DepositRequest
type WithdrawRequest = core.WithdrawRequest
type CustodyResult = core.CustodyResult
type TransferRequest = core.TransferRequest
type TransferFromRequest = core.TransferFromRequest
type AllowanceRequest = core.AllowanceRequest
type MintRequest = core.MintRequest
type BurnFromRequest = core.BurnFromRequest
type PauseRequest = core.PauseRequest
type RoleRequest = core.RoleRequest

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithPrincipal       = core.WithPrincipal
	WithAssetContract   = core.WithAssetContract
	WithExecutor        = core.WithExecutor
	WithRegistry        = core.WithRegistry
	WithEventSink       = core.WithEventSink
	WithClock           = core.WithClock
)

// assetDeploymentNonce follows the ledger (0) and vault (1) nonces.
const assetDeploymentNonce = uint64(2)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

// LocalDeployment is a service deployed next to an in-memory asset
// collection that shares its executor.
type LocalDeployment struct {
	Service    *Service
	Collection *asset.Collection
}

// NewLocal deploys the custody service together with an in-memory asset
// collection. The collection lives at cfg.AssetAddress, or at the address the
// principal would deploy it to next when that is empty.
func NewLocal(cfg Config, principal Address, opts ...Option) (*LocalDeployment, error) {
	if principal == core.ZeroAddress {
		return nil, fmt.Errorf("custody: principal is required")
	}
	assetAddress := crypto.CreateAddress(principal, assetDeploymentNonce)
	if raw := strings.TrimSpace(cfg.AssetAddress); raw != "" {
		parsed, err := core.ParseAddress(raw)
		if err != nil {
			return nil, err
		}
		assetAddress = parsed
	}

	executor := core.NewExecutor()
	collection, err := asset.NewCollection(executor, assetAddress)
	if err != nil {
		return nil, err
	}
	all := append([]Option{
		core.WithPrincipal(principal),
		core.WithExecutor(executor),
		core.WithAssetContract(collection),
	}, opts...)
	svc, err := core.NewService(cfg, all...)
	if err != nil {
		return nil, err
	}
	return &LocalDeployment{Service: svc, Collection: collection}, nil
}
