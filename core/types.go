package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address identifies an account or contract on the custody ledger.
type Address = common.Address

// Amount is an unsigned 256 bit claim quantity.
type Amount = uint256.Int

// CollateralID identifies a single non-fungible collateral item.
type CollateralID uint64

func (id CollateralID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ZeroAddress is never a valid account.
var ZeroAddress = Address{}

func NewAmount(value uint64) Amount {
	return *uint256.NewInt(value)
}

// ParseAmount parses a base-10 amount. Hex input with a 0x prefix is accepted.
func ParseAmount(value string) (Amount, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Amount{}, fmt.Errorf("core: amount is required")
	}
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		parsed, err := uint256.FromHex(value)
		if err != nil {
			return Amount{}, fmt.Errorf("core: invalid amount %q: %w", value, err)
		}
		return *parsed, nil
	}
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return Amount{}, fmt.Errorf("core: invalid amount %q: %w", value, err)
	}
	return *parsed, nil
}

func MustParseAmount(value string) Amount {
	amount, err := ParseAmount(value)
	if err != nil {
		panic(err)
	}
	return amount
}

func FormatAmount(amount Amount) string {
	return amount.Dec()
}

// ParseAddress accepts a 0x prefixed hex address and rejects the zero address.
func ParseAddress(value string) (Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return Address{}, fmt.Errorf("core: invalid address %q", value)
	}
	address := common.HexToAddress(value)
	if address == ZeroAddress {
		return Address{}, fmt.Errorf("core: zero address is not allowed")
	}
	return address, nil
}

func addAmounts(a, b Amount) (Amount, bool) {
	var out Amount
	_, overflow := out.AddOverflow(&a, &b)
	return out, overflow
}

func subAmounts(a, b Amount) (Amount, bool) {
	var out Amount
	_, underflow := out.SubOverflow(&a, &b)
	return out, underflow
}

func amountLess(a, b Amount) bool {
	return a.Lt(&b)
}
