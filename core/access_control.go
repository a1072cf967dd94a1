package core

import (
	"bytes"
	"context"
	"fmt"
	"sort"
)

// AccessControl keeps the per-role member sets of a contract. Every role is
// administered by RoleAdmin; with no RoleAdmin member left, the sets can
// only shrink.
type AccessControl struct {
	component string
	contract  Address
	members   map[Role]map[Address]struct{}
	admins    map[Role]Role
}

func newAccessControl(component string, contract Address) *AccessControl {
	return &AccessControl{
		component: component,
		contract:  contract,
		members:   map[Role]map[Address]struct{}{},
		admins:    map[Role]Role{},
	}
}

func (a *AccessControl) HasRole(role Role, account Address) bool {
	if a == nil {
		return false
	}
	_, ok := a.members[role][account]
	return ok
}

func (a *AccessControl) RoleAdmin(role Role) Role {
	if a == nil {
		return RoleAdmin
	}
	if admin, ok := a.admins[role]; ok {
		return admin
	}
	return RoleAdmin
}

func (a *AccessControl) Members(role Role) []Address {
	if a == nil {
		return nil
	}
	set := a.members[role]
	out := make([]Address, 0, len(set))
	for account := range set {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}

func (a *AccessControl) require(role Role, account Address, action string) error {
	if a.HasRole(role, account) {
		return nil
	}
	return missingRoleError(a.component, role, account, action)
}

func (a *AccessControl) grant(ctx context.Context, caller Address, role Role, account Address) error {
	if err := a.require(a.RoleAdmin(role), caller, "grant "+RoleName(role)); err != nil {
		return err
	}
	return a.grantUnchecked(ctx, caller, role, account)
}

func (a *AccessControl) grantUnchecked(ctx context.Context, caller Address, role Role, account Address) error {
	if account == ZeroAddress {
		return zeroAddressError(a.component, "account")
	}
	if a.HasRole(role, account) {
		return nil
	}
	set, ok := a.members[role]
	if !ok || set == nil {
		set = map[Address]struct{}{}
		if err := PutState(ctx, a.members, role, set, true); err != nil {
			return err
		}
	}
	if err := PutState(ctx, set, account, struct{}{}, true); err != nil {
		return err
	}
	return Emit(ctx, Event{
		Type:     EventRoleGranted,
		Contract: a.contract,
		To:       account,
		Operator: caller,
		Role:     role,
	})
}

func (a *AccessControl) revoke(ctx context.Context, caller Address, role Role, account Address) error {
	if err := a.require(a.RoleAdmin(role), caller, "revoke "+RoleName(role)); err != nil {
		return err
	}
	return a.revokeUnchecked(ctx, caller, role, account)
}

func (a *AccessControl) renounce(ctx context.Context, caller Address, role Role, account Address) error {
	if account != caller {
		return badInputError(
			fmt.Sprintf("%s: can only renounce roles for self", a.component),
			map[string]any{"role": RoleName(role), "account": account.Hex()},
		)
	}
	return a.revokeUnchecked(ctx, caller, role, account)
}

func (a *AccessControl) revokeUnchecked(ctx context.Context, caller Address, role Role, account Address) error {
	if !a.HasRole(role, account) {
		return nil
	}
	if err := PutState(ctx, a.members[role], account, struct{}{}, false); err != nil {
		return err
	}
	return Emit(ctx, Event{
		Type:     EventRoleRevoked,
		Contract: a.contract,
		From:     account,
		Operator: caller,
		Role:     role,
	})
}
