package sqlstore

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goliatone/go-custody/core"
	"github.com/uptrace/bun"
)

type eventRecord struct {
	bun.BaseModel `bun:"table:custody_events,alias:ce"`

	ID           string    `bun:"id,pk"`
	Sequence     int64     `bun:"sequence,notnull"`
	EventType    string    `bun:"event_type,notnull"`
	Contract     string    `bun:"contract,notnull"`
	FromAddress  string    `bun:"from_address,notnull"`
	ToAddress    string    `bun:"to_address,notnull"`
	Operator     string    `bun:"operator,notnull"`
	Amount       string    `bun:"amount,notnull"`
	CollateralID int64     `bun:"collateral_id,notnull"`
	Role         string    `bun:"role,notnull"`
	Approved     bool      `bun:"approved,notnull"`
	OccurredAt   time.Time `bun:"occurred_at,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type claimBalanceRecord struct {
	bun.BaseModel `bun:"table:custody_claim_balances,alias:ccb"`

	Ledger       string    `bun:"ledger,pk"`
	Account      string    `bun:"account,pk"`
	Balance      string    `bun:"balance,notnull"`
	LastSequence int64     `bun:"last_sequence,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type supplyRecord struct {
	bun.BaseModel `bun:"table:custody_supply,alias:cs"`

	Ledger       string    `bun:"ledger,pk"`
	TotalSupply  string    `bun:"total_supply,notnull"`
	LastSequence int64     `bun:"last_sequence,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type depositRecord struct {
	bun.BaseModel `bun:"table:custody_deposits,alias:cd"`

	Vault        string    `bun:"vault,pk"`
	CollateralID int64     `bun:"collateral_id,pk"`
	Depositor    string    `bun:"depositor,notnull"`
	ClaimAmount  string    `bun:"claim_amount,notnull"`
	LastSequence int64     `bun:"last_sequence,notnull"`
	DepositedAt  time.Time `bun:"deposited_at,notnull"`
}

func newEventRecord(evt core.Event) *eventRecord {
	return &eventRecord{
		Sequence:     int64(evt.Sequence),
		EventType:    string(evt.Type),
		Contract:     evt.Contract.Hex(),
		FromAddress:  addressColumn(evt.From),
		ToAddress:    addressColumn(evt.To),
		Operator:     addressColumn(evt.Operator),
		Amount:       core.FormatAmount(evt.Amount),
		CollateralID: int64(evt.CollateralID),
		Role:         roleColumn(evt.Role),
		Approved:     evt.Approved,
		OccurredAt:   evt.OccurredAt.UTC(),
	}
}

func (r *eventRecord) toDomain() (core.Event, error) {
	amount, err := core.ParseAmount(r.Amount)
	if err != nil {
		return core.Event{}, err
	}
	return core.Event{
		Sequence:     uint64(r.Sequence),
		Type:         core.EventType(r.EventType),
		Contract:     parseAddressColumn(r.Contract),
		From:         parseAddressColumn(r.FromAddress),
		To:           parseAddressColumn(r.ToAddress),
		Operator:     parseAddressColumn(r.Operator),
		Amount:       amount,
		CollateralID: core.CollateralID(r.CollateralID),
		Role:         parseRoleColumn(r.Role),
		Approved:     r.Approved,
		OccurredAt:   r.OccurredAt.UTC(),
	}, nil
}

// addressColumn stores the zero address as an empty string so mint and burn
// rows stay easy to filter.
func addressColumn(address core.Address) string {
	if address == core.ZeroAddress {
		return ""
	}
	return address.Hex()
}

func roleColumn(role core.Role) string {
	if role == core.RoleAdmin {
		return ""
	}
	return role.Hex()
}

func parseAddressColumn(value string) core.Address {
	value = strings.TrimSpace(value)
	if value == "" {
		return core.ZeroAddress
	}
	return common.HexToAddress(value)
}

func parseRoleColumn(value string) core.Role {
	value = strings.TrimSpace(value)
	if value == "" {
		return core.RoleAdmin
	}
	return common.HexToHash(value)
}
