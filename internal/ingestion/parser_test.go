package ingestion_test

import (
	"PredictLedger/internal/event"
	"PredictLedger/internal/ingestion"
	"encoding/json"
	"testing"
	"time"
)

func rawFromJSON(t *testing.T, v interface{}) ingestion.RawEvent {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return ingestion.RawEvent{
		Subject:   "test",
		Data:      data,
		Timestamp: time.Now(),
		AckFunc:   func() {},
		NakFunc:   func() {},
	}
}

func TestParseBetPlaced(t *testing.T) {
	payload := map[string]interface{}{
		"bet_id":       "550e8400-e29b-41d4-a716-446655440000",
		"player_id":    "660e8400-e29b-41d4-a716-446655440001",
		"market":       "42",
		"side":         "yes",
		"gross_amount": uint64(100_000),
		"bet_sequence": int64(7),
		"timestamp_us": int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	evt, err := ingestion.ParseRawEvent(raw, "BetPlaced")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	bp, ok := evt.(*event.BetPlaced)
	if !ok {
		t.Fatalf("expected *event.BetPlaced, got %T", evt)
	}

	if bp.Market != "42" {
		t.Errorf("market: got %s, want 42", bp.Market)
	}
	if bp.BetSide != event.SideYes {
		t.Errorf("side: got %d, want SideYes", bp.BetSide)
	}
	if bp.GrossAmount != 100_000 {
		t.Errorf("gross_amount: got %d, want 100_000", bp.GrossAmount)
	}
	if bp.BetSequence != 7 {
		t.Errorf("bet_sequence: got %d, want 7", bp.BetSequence)
	}
	if bp.EventType() != event.EventTypeBetPlaced {
		t.Errorf("event type: got %v, want BetPlaced", bp.EventType())
	}
}

func TestParseDeposit(t *testing.T) {
	payload := map[string]interface{}{
		"deposit_id":   "550e8400-e29b-41d4-a716-446655440000",
		"admin_id":     "770e8400-e29b-41d4-a716-446655440002",
		"player_id":    "660e8400-e29b-41d4-a716-446655440001",
		"amount":       uint64(1_000_000),
		"sequence":     int64(1),
		"timestamp_us": int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	evt, err := ingestion.ParseRawEvent(raw, "Deposit")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	d, ok := evt.(*event.Deposit)
	if !ok {
		t.Fatalf("expected *event.Deposit, got %T", evt)
	}

	if d.Amount != 1_000_000 {
		t.Errorf("amount: got %d, want 1_000_000", d.Amount)
	}
	if d.EventType() != event.EventTypeDeposit {
		t.Errorf("event type: got %v, want Deposit", d.EventType())
	}
}

func TestParseMarketCreate(t *testing.T) {
	payload := map[string]interface{}{
		"request_id":      "550e8400-e29b-41d4-a716-446655440000",
		"admin_id":        "770e8400-e29b-41d4-a716-446655440002",
		"title":           "Will it rain tomorrow?",
		"description":     "Resolved against the official station reading",
		"start_time":      uint64(0),
		"end_time":        uint64(17_280),
		"resolution_time": uint64(17_280),
		"sequence":        int64(3),
		"timestamp_us":    int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	evt, err := ingestion.ParseRawEvent(raw, "MarketCreate")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	mc, ok := evt.(*event.MarketCreate)
	if !ok {
		t.Fatalf("expected *event.MarketCreate, got %T", evt)
	}

	if mc.Title != "Will it rain tomorrow?" {
		t.Errorf("title: got %s", mc.Title)
	}
	if mc.EndTime != 17_280 {
		t.Errorf("end_time: got %d, want 17_280", mc.EndTime)
	}
}

func TestParseMarketCreate_EmptyTitle_Fails(t *testing.T) {
	payload := map[string]interface{}{
		"request_id":   "550e8400-e29b-41d4-a716-446655440000",
		"admin_id":     "770e8400-e29b-41d4-a716-446655440002",
		"title":        "",
		"timestamp_us": int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	_, err := ingestion.ParseRawEvent(raw, "MarketCreate")
	if err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestParseMarketResolve(t *testing.T) {
	payload := map[string]interface{}{
		"request_id":   "550e8400-e29b-41d4-a716-446655440000",
		"admin_id":     "770e8400-e29b-41d4-a716-446655440002",
		"market":       "42",
		"outcome":      "no",
		"sequence":     int64(9),
		"timestamp_us": int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	evt, err := ingestion.ParseRawEvent(raw, "MarketResolve")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	mr, ok := evt.(*event.MarketResolve)
	if !ok {
		t.Fatalf("expected *event.MarketResolve, got %T", evt)
	}

	if mr.Outcome != event.SideNo {
		t.Errorf("outcome: got %d, want SideNo", mr.Outcome)
	}
}

func TestParseTick(t *testing.T) {
	payload := map[string]interface{}{
		"counter":      uint64(17_280),
		"timestamp_us": int64(1700000000000000),
	}

	raw := rawFromJSON(t, payload)
	evt, err := ingestion.ParseRawEvent(raw, "Tick")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	tk, ok := evt.(*event.Tick)
	if !ok {
		t.Fatalf("expected *event.Tick, got %T", evt)
	}

	if tk.Counter != 17_280 {
		t.Errorf("counter: got %d, want 17_280", tk.Counter)
	}
	if tk.Timestamp != 1700000000000000 {
		t.Errorf("timestamp: got %d", tk.Timestamp)
	}
}

func TestParseInvalidSide_Fails(t *testing.T) {
	payload := map[string]interface{}{
		"bet_id":       "550e8400-e29b-41d4-a716-446655440000",
		"player_id":    "660e8400-e29b-41d4-a716-446655440001",
		"market":       "42",
		"side":         "maybe",
		"gross_amount": uint64(100),
		"bet_sequence": int64(0),
		"timestamp_us": int64(0),
	}

	raw := rawFromJSON(t, payload)
	_, err := ingestion.ParseRawEvent(raw, "BetPlaced")
	if err == nil {
		t.Fatal("expected error for invalid side")
	}
}

func TestParseUnknownEventType_Fails(t *testing.T) {
	raw := ingestion.RawEvent{Data: []byte(`{}`)}
	_, err := ingestion.ParseRawEvent(raw, "NonExistentType")
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestParseInvalidJSON_Fails(t *testing.T) {
	raw := ingestion.RawEvent{Data: []byte(`{invalid json`)}
	_, err := ingestion.ParseRawEvent(raw, "BetPlaced")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseInvalidUUID_Fails(t *testing.T) {
	payload := map[string]interface{}{
		"bet_id":       "not-a-uuid",
		"player_id":    "also-not-a-uuid",
		"market":       "42",
		"side":         "yes",
		"gross_amount": uint64(1),
		"bet_sequence": int64(0),
		"timestamp_us": int64(0),
	}

	raw := rawFromJSON(t, payload)
	_, err := ingestion.ParseRawEvent(raw, "BetPlaced")
	if err == nil {
		t.Fatal("expected error for invalid UUID")
	}
}
