package event

import (
	"time"

	"github.com/google/uuid"
)

// PlayerInstall registers a new player account with a zero balance.
type PlayerInstall struct {
	PlayerID  uuid.UUID
	Sequence  int64
	Timestamp time.Time
}

func (p *PlayerInstall) IdempotencyKey() string {
	return "install:" + p.PlayerID.String()
}

func (p *PlayerInstall) EventType() EventType {
	return EventTypePlayerInstall
}

func (p *PlayerInstall) MarketID() *string {
	return nil // Global event
}

func (p *PlayerInstall) SourceSequence() int64 {
	return p.Sequence
}

// Deposit credits a player's cash balance. Admin-gated upstream and
// re-checked by the core against the configured admin identity.
type Deposit struct {
	DepositID uuid.UUID
	AdminID   uuid.UUID
	PlayerID  uuid.UUID
	Amount    uint64
	Sequence  int64
	Timestamp time.Time
}

func (d *Deposit) IdempotencyKey() string {
	return d.DepositID.String()
}

func (d *Deposit) EventType() EventType {
	return EventTypeDeposit
}

func (d *Deposit) MarketID() *string {
	return nil
}

func (d *Deposit) SourceSequence() int64 {
	return d.Sequence
}

// Withdrawal debits a player's cash balance back to the external vault.
type Withdrawal struct {
	WithdrawalID uuid.UUID
	PlayerID     uuid.UUID
	Amount       uint64
	Sequence     int64
	Timestamp    time.Time
}

func (w *Withdrawal) IdempotencyKey() string {
	return w.WithdrawalID.String()
}

func (w *Withdrawal) EventType() EventType {
	return EventTypeWithdrawal
}

func (w *Withdrawal) MarketID() *string {
	return nil
}

func (w *Withdrawal) SourceSequence() int64 {
	return w.Sequence
}
