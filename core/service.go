package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const defaultLoggerName = "custody"

// Deployment nonces of the principal used to derive contract addresses.
const (
	ledgerDeploymentNonce = uint64(0)
	vaultDeploymentNonce  = uint64(1)
)

type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	executor        *Executor
	asset           AssetContract
	ledger          *ClaimLedger
	vault           *Vault
	deployment      Deployment
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Executor        *Executor
	Asset           AssetContract
}

// NewService resolves config, deploys the claim ledger and the vault and
// hands the mint role to the vault.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve(defaultLoggerName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(defaultLoggerName); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.principal == ZeroAddress {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: principal is required"))
	}
	if builder.asset == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: asset contract is required"))
	}
	if configured := strings.TrimSpace(finalConfig.AssetAddress); configured != "" {
		if common.HexToAddress(configured) != builder.asset.Address() {
			return nil, mapBuildError(builder.errorMapper, fmt.Errorf(
				"core: asset_address %s mismatch with asset contract %s",
				configured, builder.asset.Address().Hex(),
			))
		}
	}

	executor, err := resolveExecutor(builder.executor, builder.asset)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if builder.clock != nil {
		executor.Now = builder.clock
	}

	registry := builder.registry
	if registry == nil {
		entries, entriesErr := finalConfig.RegistryEntries()
		if entriesErr != nil {
			return nil, mapBuildError(builder.errorMapper, entriesErr)
		}
		registry, err = NewRegistryFromEntries(entries)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	svc := &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		executor:        executor,
		asset:           builder.asset,
	}
	for _, sink := range builder.eventSinks {
		executor.AddSink(sink)
	}
	executor.OnSinkError(func(ctx context.Context, sinkErr error) {
		svc.logError(ctx, "event sink failed", map[string]any{"error": sinkErr.Error()})
	})

	if err := svc.deploy(context.Background(), builder.principal, registry); err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	return svc, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func resolveExecutor(configured *Executor, asset AssetContract) (*Executor, error) {
	var shared *Executor
	if bound, ok := asset.(ExecutorBound); ok {
		shared = bound.Executor()
	}
	switch {
	case configured != nil && shared != nil && configured != shared:
		return nil, fmt.Errorf("core: asset contract runs on a different executor")
	case configured != nil:
		return configured, nil
	case shared != nil:
		return shared, nil
	default:
		return NewExecutor(), nil
	}
}

// deploy runs the setup sequence as one transaction so a failing step
// leaves no partially configured ledger behind.
func (s *Service) deploy(ctx context.Context, principal Address, registry *Registry) error {
	deployment := Deployment{
		Principal: principal,
		Ledger:    crypto.CreateAddress(principal, ledgerDeploymentNonce),
		Vault:     crypto.CreateAddress(principal, vaultDeploymentNonce),
		Asset:     s.asset.Address(),
	}
	setup := s.config.Setup

	err := s.executor.Execute(ctx, func(ctx context.Context) error {
		ledger, err := NewClaimLedger(ctx, s.executor, deployment.Ledger, principal, s.config.ClaimToken.Name, s.config.ClaimToken.Symbol)
		if err != nil {
			return err
		}
		deployment.Steps = append(deployment.Steps, DeploymentStep{Name: "deploy_ledger", Account: deployment.Ledger})

		vault, err := NewVault(ctx, s.executor, VaultConfig{
			Address:  deployment.Vault,
			Registry: registry,
			Claims:   ledger,
			Asset:    s.asset,
		})
		if err != nil {
			return err
		}
		deployment.Steps = append(deployment.Steps, DeploymentStep{Name: "deploy_vault", Account: deployment.Vault})

		if err := ledger.GrantRole(ctx, principal, RoleMint, vault.Address()); err != nil {
			return err
		}
		deployment.Steps = append(deployment.Steps, DeploymentStep{Name: "grant_role", Account: vault.Address(), Role: RoleMint})

		renounce := []Role{}
		if !setup.SkipRenounce {
			renounce = append(renounce, RoleMint, RolePause)
			if !setup.RetainAdmin {
				renounce = append(renounce, RoleAdmin)
			}
		}
		for _, role := range renounce {
			if err := ledger.RenounceRole(ctx, principal, role, principal); err != nil {
				return err
			}
			deployment.Steps = append(deployment.Steps, DeploymentStep{Name: "renounce_role", Account: principal, Role: role})
		}

		s.ledger = ledger
		s.vault = vault
		return nil
	})
	if err != nil {
		return err
	}
	s.deployment = deployment

	for idx, step := range deployment.Steps {
		fields := map[string]any{
			"step":    idx + 1,
			"name":    step.Name,
			"account": step.Account.Hex(),
		}
		if step.Name == "grant_role" || step.Name == "renounce_role" {
			fields["role"] = RoleName(step.Role)
		}
		s.logInfo(ctx, "deployment step", fields)
	}
	s.logInfo(ctx, "custody deployed", map[string]any{
		"principal":      principal.Hex(),
		"ledger":         deployment.Ledger.Hex(),
		"vault":          deployment.Vault.Hex(),
		"asset":          deployment.Asset.Hex(),
		"registry_size":  registry.Len(),
		"max_supply":     FormatAmount(registry.Total()),
		"service_name":   s.config.ServiceName,
		"claim_token":    s.config.ClaimToken.Symbol,
		"retained_admin": setup.SkipRenounce || setup.RetainAdmin,
	})
	return nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Executor:        s.executor,
		Asset:           s.asset,
	}
}

func (s *Service) Deployment() Deployment {
	if s == nil {
		return Deployment{}
	}
	out := s.deployment
	out.Steps = append([]DeploymentStep(nil), s.deployment.Steps...)
	return out
}

func (s *Service) Ledger() *ClaimLedger {
	if s == nil {
		return nil
	}
	return s.ledger
}

func (s *Service) Vault() *Vault {
	if s == nil {
		return nil
	}
	return s.vault
}

func (s *Service) Executor() *Executor {
	if s == nil {
		return nil
	}
	return s.executor
}

// SubscribeEvents delivers every committed event to ch.
func (s *Service) SubscribeEvents(ch chan<- Event) event.Subscription {
	return s.executor.Subscribe(ch)
}

func (s *Service) AddEventSink(sink EventSink) {
	if s == nil {
		return
	}
	s.executor.AddSink(sink)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) ready() error {
	if s == nil || s.ledger == nil || s.vault == nil {
		return fmt.Errorf("core: custody service is not deployed")
	}
	return nil
}

// requireExternalCaller rejects requests made in the name of a deployed
// custody contract. The vault drives the ledger directly, never through the
// service, so no legitimate request carries its address.
func (s *Service) requireExternalCaller(caller Address) error {
	for _, contract := range []Address{s.vault.Address(), s.ledger.Address()} {
		if caller == contract {
			return authorizationError(
				"custody: caller cannot act as a custody contract",
				CustodyErrorUnauthorized,
				map[string]any{"caller": caller.Hex()},
			)
		}
	}
	return nil
}

func startTimer() time.Time {
	return time.Now().UTC()
}
