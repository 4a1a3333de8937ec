package ingestion

import (
	"PredictLedger/internal/event"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParseRawEvent converts a RawEvent (JSON bytes + event type string) into a
// typed event.Event. The ingestion shell validates, parses, and converts raw
// events before sending them to the deterministic core.
func ParseRawEvent(raw RawEvent, eventType string) (event.Event, error) {
	switch eventType {
	case "PlayerInstall":
		return parsePlayerInstall(raw.Data)
	case "Deposit":
		return parseDeposit(raw.Data)
	case "Withdrawal":
		return parseWithdrawal(raw.Data)
	case "MarketCreate":
		return parseMarketCreate(raw.Data)
	case "BetPlaced":
		return parseBetPlaced(raw.Data)
	case "SharesSold":
		return parseSharesSold(raw.Data)
	case "MarketResolve":
		return parseMarketResolve(raw.Data)
	case "Claim":
		return parseClaim(raw.Data)
	case "FeeWithdrawal":
		return parseFeeWithdrawal(raw.Data)
	case "Tick":
		return parseTick(raw.Data)
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}

func parseSide(s string) (event.Side, error) {
	switch s {
	case "yes":
		return event.SideYes, nil
	case "no":
		return event.SideNo, nil
	default:
		return event.SideUnknown, fmt.Errorf("invalid side: %q", s)
	}
}

// --- JSON wire formats ---
// These structs represent the JSON payloads received from NATS.
// Field names use snake_case to match upstream producers.

type playerInstallJSON struct {
	PlayerID    string `json:"player_id"`
	Sequence    int64  `json:"sequence"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parsePlayerInstall(data []byte) (*event.PlayerInstall, error) {
	var j playerInstallJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse PlayerInstall: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	return &event.PlayerInstall{
		PlayerID:  playerID,
		Sequence:  j.Sequence,
		Timestamp: time.UnixMicro(j.TimestampUs),
	}, nil
}

type depositJSON struct {
	DepositID   string `json:"deposit_id"`
	AdminID     string `json:"admin_id"`
	PlayerID    string `json:"player_id"`
	Amount      uint64 `json:"amount"`
	Sequence    int64  `json:"sequence"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parseDeposit(data []byte) (*event.Deposit, error) {
	var j depositJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Deposit: %w", err)
	}
	depositID, err := uuid.Parse(j.DepositID)
	if err != nil {
		return nil, fmt.Errorf("parse deposit_id: %w", err)
	}
	adminID, err := uuid.Parse(j.AdminID)
	if err != nil {
		return nil, fmt.Errorf("parse admin_id: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	return &event.Deposit{
		DepositID: depositID,
		AdminID:   adminID,
		PlayerID:  playerID,
		Amount:    j.Amount,
		Sequence:  j.Sequence,
		Timestamp: time.UnixMicro(j.TimestampUs),
	}, nil
}

type withdrawalJSON struct {
	WithdrawalID string `json:"withdrawal_id"`
	PlayerID     string `json:"player_id"`
	Amount       uint64 `json:"amount"`
	Sequence     int64  `json:"sequence"`
	TimestampUs  int64  `json:"timestamp_us"`
}

func parseWithdrawal(data []byte) (*event.Withdrawal, error) {
	var j withdrawalJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Withdrawal: %w", err)
	}
	wdID, err := uuid.Parse(j.WithdrawalID)
	if err != nil {
		return nil, fmt.Errorf("parse withdrawal_id: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	return &event.Withdrawal{
		WithdrawalID: wdID,
		PlayerID:     playerID,
		Amount:       j.Amount,
		Sequence:     j.Sequence,
		Timestamp:    time.UnixMicro(j.TimestampUs),
	}, nil
}

type marketCreateJSON struct {
	RequestID      string `json:"request_id"`
	AdminID        string `json:"admin_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	StartTime      uint64 `json:"start_time"`
	EndTime        uint64 `json:"end_time"`
	ResolutionTime uint64 `json:"resolution_time"`
	Sequence       int64  `json:"sequence"`
	TimestampUs    int64  `json:"timestamp_us"`
}

func parseMarketCreate(data []byte) (*event.MarketCreate, error) {
	var j marketCreateJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse MarketCreate: %w", err)
	}
	requestID, err := uuid.Parse(j.RequestID)
	if err != nil {
		return nil, fmt.Errorf("parse request_id: %w", err)
	}
	adminID, err := uuid.Parse(j.AdminID)
	if err != nil {
		return nil, fmt.Errorf("parse admin_id: %w", err)
	}
	if j.Title == "" {
		return nil, fmt.Errorf("market title must not be empty")
	}
	return &event.MarketCreate{
		RequestID:      requestID,
		AdminID:        adminID,
		Title:          j.Title,
		Description:    j.Description,
		StartTime:      j.StartTime,
		EndTime:        j.EndTime,
		ResolutionTime: j.ResolutionTime,
		Sequence:       j.Sequence,
		Timestamp:      time.UnixMicro(j.TimestampUs),
	}, nil
}

type betPlacedJSON struct {
	BetID       string `json:"bet_id"`
	PlayerID    string `json:"player_id"`
	Market      string `json:"market"`
	Side        string `json:"side"` // "yes" or "no"
	GrossAmount uint64 `json:"gross_amount"`
	BetSequence int64  `json:"bet_sequence"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parseBetPlaced(data []byte) (*event.BetPlaced, error) {
	var j betPlacedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse BetPlaced: %w", err)
	}
	betID, err := uuid.Parse(j.BetID)
	if err != nil {
		return nil, fmt.Errorf("parse bet_id: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	side, err := parseSide(j.Side)
	if err != nil {
		return nil, err
	}
	return &event.BetPlaced{
		BetID:       betID,
		PlayerID:    playerID,
		Market:      j.Market,
		BetSide:     side,
		GrossAmount: j.GrossAmount,
		BetSequence: j.BetSequence,
		Timestamp:   time.UnixMicro(j.TimestampUs),
	}, nil
}

type sharesSoldJSON struct {
	SellID       string `json:"sell_id"`
	PlayerID     string `json:"player_id"`
	Market       string `json:"market"`
	Side         string `json:"side"`
	Shares       uint64 `json:"shares"`
	SellSequence int64  `json:"sell_sequence"`
	TimestampUs  int64  `json:"timestamp_us"`
}

func parseSharesSold(data []byte) (*event.SharesSold, error) {
	var j sharesSoldJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse SharesSold: %w", err)
	}
	sellID, err := uuid.Parse(j.SellID)
	if err != nil {
		return nil, fmt.Errorf("parse sell_id: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	side, err := parseSide(j.Side)
	if err != nil {
		return nil, err
	}
	return &event.SharesSold{
		SellID:       sellID,
		PlayerID:     playerID,
		Market:       j.Market,
		SellSide:     side,
		Shares:       j.Shares,
		SellSequence: j.SellSequence,
		Timestamp:    time.UnixMicro(j.TimestampUs),
	}, nil
}

type marketResolveJSON struct {
	RequestID   string `json:"request_id"`
	AdminID     string `json:"admin_id"`
	Market      string `json:"market"`
	Outcome     string `json:"outcome"` // "yes" or "no"
	Sequence    int64  `json:"sequence"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parseMarketResolve(data []byte) (*event.MarketResolve, error) {
	var j marketResolveJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse MarketResolve: %w", err)
	}
	requestID, err := uuid.Parse(j.RequestID)
	if err != nil {
		return nil, fmt.Errorf("parse request_id: %w", err)
	}
	adminID, err := uuid.Parse(j.AdminID)
	if err != nil {
		return nil, fmt.Errorf("parse admin_id: %w", err)
	}
	outcome, err := parseSide(j.Outcome)
	if err != nil {
		return nil, fmt.Errorf("parse outcome: %w", err)
	}
	return &event.MarketResolve{
		RequestID: requestID,
		AdminID:   adminID,
		Market:    j.Market,
		Outcome:   outcome,
		Sequence:  j.Sequence,
		Timestamp: time.UnixMicro(j.TimestampUs),
	}, nil
}

type claimJSON struct {
	ClaimID       string `json:"claim_id"`
	PlayerID      string `json:"player_id"`
	Market        string `json:"market"`
	ClaimSequence int64  `json:"claim_sequence"`
	TimestampUs   int64  `json:"timestamp_us"`
}

func parseClaim(data []byte) (*event.Claim, error) {
	var j claimJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Claim: %w", err)
	}
	claimID, err := uuid.Parse(j.ClaimID)
	if err != nil {
		return nil, fmt.Errorf("parse claim_id: %w", err)
	}
	playerID, err := uuid.Parse(j.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	return &event.Claim{
		ClaimID:       claimID,
		PlayerID:      playerID,
		Market:        j.Market,
		ClaimSequence: j.ClaimSequence,
		Timestamp:     time.UnixMicro(j.TimestampUs),
	}, nil
}

type feeWithdrawalJSON struct {
	RequestID   string `json:"request_id"`
	AdminID     string `json:"admin_id"`
	Market      string `json:"market"`
	Sequence    int64  `json:"sequence"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parseFeeWithdrawal(data []byte) (*event.FeeWithdrawal, error) {
	var j feeWithdrawalJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse FeeWithdrawal: %w", err)
	}
	requestID, err := uuid.Parse(j.RequestID)
	if err != nil {
		return nil, fmt.Errorf("parse request_id: %w", err)
	}
	adminID, err := uuid.Parse(j.AdminID)
	if err != nil {
		return nil, fmt.Errorf("parse admin_id: %w", err)
	}
	return &event.FeeWithdrawal{
		RequestID: requestID,
		AdminID:   adminID,
		Market:    j.Market,
		Sequence:  j.Sequence,
		Timestamp: time.UnixMicro(j.TimestampUs),
	}, nil
}

type tickJSON struct {
	Counter     uint64 `json:"counter"`
	TimestampUs int64  `json:"timestamp_us"`
}

func parseTick(data []byte) (*event.Tick, error) {
	var j tickJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Tick: %w", err)
	}
	return &event.Tick{
		Counter:   j.Counter,
		Timestamp: j.TimestampUs,
	}, nil
}
