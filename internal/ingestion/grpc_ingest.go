package ingestion

import (
	"PredictLedger/internal/event"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GRPCIngestService provides admin/manual event injection via gRPC.
// gRPC ingest is for admin operations and manual event injection, not for
// high-throughput ingestion (use NATS for that).
type GRPCIngestService struct {
	eventChan chan<- event.Event
}

func NewGRPCIngestService(eventChan chan<- event.Event) *GRPCIngestService {
	return &GRPCIngestService{eventChan: eventChan}
}

// EventChan exposes the injection channel for transports that parse
// their own payloads.
func (s *GRPCIngestService) EventChan() chan<- event.Event {
	return s.eventChan
}

// InjectDeposit manually injects a Deposit event.
func (s *GRPCIngestService) InjectDeposit(
	ctx context.Context,
	adminID uuid.UUID,
	playerID uuid.UUID,
	amount uint64,
	sequence int64,
) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	evt := &event.Deposit{
		DepositID: uuid.New(),
		AdminID:   adminID,
		PlayerID:  playerID,
		Amount:    amount,
		Sequence:  sequence,
		Timestamp: time.Now(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectWithdrawal manually injects a Withdrawal event.
func (s *GRPCIngestService) InjectWithdrawal(
	ctx context.Context,
	playerID uuid.UUID,
	amount uint64,
	sequence int64,
) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	evt := &event.Withdrawal{
		WithdrawalID: uuid.New(),
		PlayerID:     playerID,
		Amount:       amount,
		Sequence:     sequence,
		Timestamp:    time.Now(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectMarketCreate manually injects a MarketCreate event.
func (s *GRPCIngestService) InjectMarketCreate(
	ctx context.Context,
	adminID uuid.UUID,
	title string,
	description string,
	startTime, endTime, resolutionTime uint64,
	sequence int64,
) error {
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if endTime <= startTime {
		return fmt.Errorf("end_time must be after start_time")
	}
	if resolutionTime < endTime {
		return fmt.Errorf("resolution_time must not precede end_time")
	}

	evt := &event.MarketCreate{
		RequestID:      uuid.New(),
		AdminID:        adminID,
		Title:          title,
		Description:    description,
		StartTime:      startTime,
		EndTime:        endTime,
		ResolutionTime: resolutionTime,
		Sequence:       sequence,
		Timestamp:      time.Now(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectMarketResolve manually injects a MarketResolve event.
func (s *GRPCIngestService) InjectMarketResolve(
	ctx context.Context,
	adminID uuid.UUID,
	marketID string,
	outcome event.Side,
	sequence int64,
) error {
	if !outcome.Valid() {
		return fmt.Errorf("outcome must be yes or no")
	}

	evt := &event.MarketResolve{
		RequestID: uuid.New(),
		AdminID:   adminID,
		Market:    marketID,
		Outcome:   outcome,
		Sequence:  sequence,
		Timestamp: time.Now(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectFeeWithdrawal manually injects a FeeWithdrawal event.
func (s *GRPCIngestService) InjectFeeWithdrawal(
	ctx context.Context,
	adminID uuid.UUID,
	marketID string,
	sequence int64,
) error {
	evt := &event.FeeWithdrawal{
		RequestID: uuid.New(),
		AdminID:   adminID,
		Market:    marketID,
		Sequence:  sequence,
		Timestamp: time.Now(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectTick manually injects a clock Tick event.
func (s *GRPCIngestService) InjectTick(
	ctx context.Context,
	counter uint64,
) error {
	evt := &event.Tick{
		Counter:   counter,
		Timestamp: time.Now().UnixMicro(),
	}

	select {
	case s.eventChan <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
