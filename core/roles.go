package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role is a named elevated capability on the claim ledger.
type Role = common.Hash

var (
	RoleAdmin = Role{}
	RoleMint  = crypto.Keccak256Hash([]byte("MINTER_ROLE"))
	RolePause = crypto.Keccak256Hash([]byte("PAUSER_ROLE"))
)

func RoleName(role Role) string {
	switch role {
	case RoleAdmin:
		return "admin"
	case RoleMint:
		return "mint"
	case RolePause:
		return "pause"
	default:
		return role.Hex()
	}
}

// ParseRole resolves a role from its short name or its 32 byte hex form.
func ParseRole(value string) (Role, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	switch normalized {
	case "admin", "default_admin_role":
		return RoleAdmin, nil
	case "mint", "minter", "minter_role":
		return RoleMint, nil
	case "pause", "pauser", "pauser_role":
		return RolePause, nil
	}
	if strings.HasPrefix(normalized, "0x") && len(normalized) == 66 {
		return common.HexToHash(normalized), nil
	}
	return Role{}, fmt.Errorf("core: unknown role %q", value)
}
