package core

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, _, err := newTestService()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorFactory == nil {
		t.Fatalf("expected default error factory")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	if deps.Executor == nil || deps.Executor != deps.Asset.(ExecutorBound).Executor() {
		t.Fatalf("expected service to share the asset executor")
	}
	if got := svc.Config().ServiceName; got != "custody" {
		t.Fatalf("expected default config service_name=custody, got %q", got)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	customFactory := func(message string, category ...goerrors.Category) *goerrors.Error {
		return goerrors.New("custom:"+message, category...)
	}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	resolved := testConfig()
	resolved.ServiceName = "resolved"
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider"}}
	optionsResolver := &fixedOptionsResolver{cfg: resolved}

	svc, _, err := newTestService(
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorFactory(customFactory),
		WithErrorMapper(customMapper),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if resolvedLogger := deps.LoggerProvider.GetLogger("custody.override"); resolvedLogger != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected options resolver output config, got %q", got)
	}

	_, err = svc.Withdraw(context.Background(), WithdrawRequest{Caller: testAlice, CollateralID: 0})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryOperation {
		t.Fatalf("expected custom mapper output, got %v", err)
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "from-config",
		"claim_token": map[string]any{
			"symbol": "CFG",
		},
		"registry": []any{
			map[string]any{"id": 4, "amount": "400"},
			map[string]any{"id": 5, "amount": "500"},
		},
		"setup": map[string]any{
			"retain_admin": true,
		},
	}})

	executor := NewExecutor()
	svc, err := NewService(Config{ServiceName: "from-runtime"},
		WithPrincipal(testPrincipal),
		WithAssetContract(newTestAsset(executor)),
		WithConfigProvider(provider),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ServiceName)
	}
	if cfg.ClaimToken.Symbol != "CFG" || cfg.ClaimToken.Name != "SimpleFraction" {
		t.Fatalf("expected config symbol over default name, got %#v", cfg.ClaimToken)
	}
	if len(cfg.Registry) != 2 {
		t.Fatalf("expected config layer registry, got %#v", cfg.Registry)
	}
	if amount, err := svc.ClaimAmount(5); err != nil || amount.Uint64() != 500 {
		t.Fatalf("expected registry id 5 to map to 500, got %s (%v)", amount.Dec(), err)
	}
	if !svc.HasRole(context.Background(), RoleAdmin, testPrincipal) {
		t.Fatalf("expected retain_admin to keep the principal admin")
	}
}

func TestNewService_RejectsInvalidSetup(t *testing.T) {
	executor := NewExecutor()
	asset := newTestAsset(executor)

	if _, err := NewService(testConfig(), WithAssetContract(asset)); err == nil {
		t.Fatalf("expected missing principal to fail")
	}
	if _, err := NewService(testConfig(), WithPrincipal(testPrincipal)); err == nil {
		t.Fatalf("expected missing asset contract to fail")
	}
	if _, err := NewService(DefaultConfig(), WithPrincipal(testPrincipal), WithAssetContract(asset)); !HasErrorCode(err, CustodyErrorInvalidRegistry) {
		t.Fatalf("expected empty registry to fail, got %v", err)
	}

	mismatch := testConfig()
	mismatch.AssetAddress = testAddress(0x42).Hex()
	if _, err := NewService(mismatch, WithPrincipal(testPrincipal), WithAssetContract(asset)); err == nil {
		t.Fatalf("expected asset address mismatch to fail")
	}

	if _, err := NewService(testConfig(),
		WithPrincipal(testPrincipal),
		WithAssetContract(asset),
		WithExecutor(NewExecutor()),
	); err == nil {
		t.Fatalf("expected executor mismatch to fail")
	}

	duplicate := testConfig()
	duplicate.Registry = append(duplicate.Registry, RegistryEntryConfig{ID: 0, Amount: "1"})
	if _, err := NewService(duplicate, WithPrincipal(testPrincipal), WithAssetContract(asset)); !HasErrorCode(err, CustodyErrorInvalidRegistry) {
		t.Fatalf("expected duplicate registry id to fail, got %v", err)
	}
}

func TestNewService_DeploymentReceipt(t *testing.T) {
	svc, asset, err := newTestService()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deployment := svc.Deployment()
	if deployment.Ledger != crypto.CreateAddress(testPrincipal, 0) {
		t.Fatalf("unexpected ledger address %s", deployment.Ledger.Hex())
	}
	if deployment.Vault != crypto.CreateAddress(testPrincipal, 1) {
		t.Fatalf("unexpected vault address %s", deployment.Vault.Hex())
	}
	if deployment.Asset != asset.Address() {
		t.Fatalf("unexpected asset address %s", deployment.Asset.Hex())
	}

	want := []string{"deploy_ledger", "deploy_vault", "grant_role", "renounce_role", "renounce_role", "renounce_role"}
	if len(deployment.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %#v", len(want), deployment.Steps)
	}
	for idx, name := range want {
		if deployment.Steps[idx].Name != name {
			t.Fatalf("step %d: expected %s, got %s", idx, name, deployment.Steps[idx].Name)
		}
	}

	ctx := context.Background()
	for _, role := range []Role{RoleAdmin, RoleMint, RolePause} {
		if svc.HasRole(ctx, role, testPrincipal) {
			t.Fatalf("expected principal to have renounced %s", RoleName(role))
		}
	}
	if !svc.HasRole(ctx, RoleMint, svc.Vault().Address()) {
		t.Fatalf("expected vault to hold the mint role")
	}
	audit := svc.AuditSupply(ctx)
	if len(audit.Minters) != 1 || audit.Minters[0] != svc.Vault().Address() {
		t.Fatalf("expected vault to be the only minter, got %v", audit.Minters)
	}
}

func TestNewService_SkipRenounceKeepsPrincipalRoles(t *testing.T) {
	cfg := testConfig()
	cfg.Setup.SkipRenounce = true
	executor := NewExecutor()
	svc, err := NewService(cfg, WithPrincipal(testPrincipal), WithAssetContract(newTestAsset(executor)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if !svc.HasRole(ctx, RolePause, testPrincipal) || !svc.HasRole(ctx, RoleMint, testPrincipal) {
		t.Fatalf("expected principal to keep mint and pause")
	}
	if err := svc.Pause(ctx, PauseRequest{Caller: testPrincipal}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !svc.Paused(ctx) {
		t.Fatalf("expected ledger to be paused")
	}
}
