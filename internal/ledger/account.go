package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AccountScope represents the top-level account namespace
type AccountScope uint8

const (
	AccountScopePlayer AccountScope = iota
	AccountScopeMarket
	AccountScopeOperator
	AccountScopeExternal
)

// AccountSubType represents the account purpose
type AccountSubType uint8

const (
	// Player sub-types
	SubTypeCash AccountSubType = iota

	// Market sub-types
	SubTypeVault

	// Operator sub-types
	SubTypeFees

	// External sub-types
	SubTypeExternalDeposits
	SubTypeExternalWithdrawals
)

// AccountKey is the in-memory key for balance tracking (18 bytes, cache-friendly).
// The engine settles a single cash currency, so there is no asset dimension.
type AccountKey struct {
	Scope    AccountScope
	EntityID [16]byte // UUID for players, market id bytes for vaults
	SubType  AccountSubType
}

// NewPlayerCashKey creates the key for a player's cash account
func NewPlayerCashKey(playerID uuid.UUID) AccountKey {
	return AccountKey{
		Scope:    AccountScopePlayer,
		EntityID: playerID,
		SubType:  SubTypeCash,
	}
}

// NewMarketVaultKey creates the key for a market's vault account.
// The vault holds every unit of cash the market owes back out:
// the prize pool plus fees collected and not yet withdrawn.
func NewMarketVaultKey(marketID string) AccountKey {
	var entityID [16]byte
	copy(entityID[:], []byte(marketID))
	return AccountKey{
		Scope:    AccountScopeMarket,
		EntityID: entityID,
		SubType:  SubTypeVault,
	}
}

// OperatorFeesKey is the single operator revenue account fee
// withdrawals sweep into.
func OperatorFeesKey() AccountKey {
	return AccountKey{
		Scope:   AccountScopeOperator,
		SubType: SubTypeFees,
	}
}

// NewExternalAccountKey creates a key for external boundary accounts
func NewExternalAccountKey(subType AccountSubType) AccountKey {
	return AccountKey{
		Scope:   AccountScopeExternal,
		SubType: subType,
	}
}

// AccountPath returns the string representation for storage/logging
func (k AccountKey) AccountPath() string {
	switch k.Scope {
	case AccountScopePlayer:
		uid := uuid.UUID(k.EntityID)
		return fmt.Sprintf("player:%s:%s", uid.String(), k.subTypeName())
	case AccountScopeMarket:
		return fmt.Sprintf("market:%s:%s", trimEntityID(k.EntityID), k.subTypeName())
	case AccountScopeOperator:
		return fmt.Sprintf("operator:%s", k.subTypeName())
	case AccountScopeExternal:
		return fmt.Sprintf("external:%s", k.subTypeName())
	}
	return "unknown"
}

func (k AccountKey) subTypeName() string {
	switch k.SubType {
	case SubTypeCash:
		return "cash"
	case SubTypeVault:
		return "vault"
	case SubTypeFees:
		return "fees"
	case SubTypeExternalDeposits:
		return "deposits"
	case SubTypeExternalWithdrawals:
		return "withdrawals"
	default:
		return "unknown"
	}
}

// ParseAccountPath converts a stored account path back into an AccountKey.
// Inverse of AccountPath; unknown paths map to the zero key.
func ParseAccountPath(path string) AccountKey {
	parts := strings.Split(path, ":")
	switch {
	case len(parts) == 3 && parts[0] == "player":
		if uid, err := uuid.Parse(parts[1]); err == nil {
			return NewPlayerCashKey(uid)
		}
	case len(parts) == 3 && parts[0] == "market":
		return NewMarketVaultKey(parts[1])
	case len(parts) == 2 && parts[0] == "operator":
		return OperatorFeesKey()
	case len(parts) == 2 && parts[0] == "external":
		if parts[1] == "deposits" {
			return NewExternalAccountKey(SubTypeExternalDeposits)
		}
		return NewExternalAccountKey(SubTypeExternalWithdrawals)
	}
	return AccountKey{}
}

// trimEntityID recovers the market id string from its fixed-width slot
func trimEntityID(entityID [16]byte) string {
	end := len(entityID)
	for end > 0 && entityID[end-1] == 0 {
		end--
	}
	return string(entityID[:end])
}
