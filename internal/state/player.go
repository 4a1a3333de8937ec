package state

import (
	"fmt"

	"PredictLedger/internal/math"

	"github.com/google/uuid"
)

// Player represents a registered account with a cash balance
type Player struct {
	PlayerID uuid.UUID
	Balance  uint64
	Version  int64
}

// CanonicalBytes for deterministic hashing
func (p *Player) CanonicalBytes() []byte {
	buf := make([]byte, 0, 32)

	// player_id (16 bytes)
	buf = append(buf, p.PlayerID[:]...)

	// balance (8 bytes LE)
	buf = appendUint64LE(buf, p.Balance)

	return buf
}

// PlayerManager holds all registered players.
// Not thread-safe — only accessed from the single-threaded deterministic core.
type PlayerManager struct {
	players map[uuid.UUID]*Player
}

func NewPlayerManager() *PlayerManager {
	return &PlayerManager{
		players: make(map[uuid.UUID]*Player),
	}
}

// Install registers a new player with a zero balance.
func (pm *PlayerManager) Install(playerID uuid.UUID) (*Player, error) {
	if _, exists := pm.players[playerID]; exists {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerExists)
	}
	player := &Player{PlayerID: playerID}
	pm.players[playerID] = player
	return player, nil
}

// Get returns a registered player.
func (pm *PlayerManager) Get(playerID uuid.UUID) (*Player, error) {
	player, ok := pm.players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	return player, nil
}

// Credit adds to a player's balance.
func (pm *PlayerManager) Credit(playerID uuid.UUID, amount uint64) error {
	player, err := pm.Get(playerID)
	if err != nil {
		return err
	}
	newBalance, err := math.CheckedAdd(player.Balance, amount)
	if err != nil {
		return err
	}
	player.Balance = newBalance
	player.Version++
	return nil
}

// Debit removes from a player's balance, rejecting overdrafts.
func (pm *PlayerManager) Debit(playerID uuid.UUID, amount uint64) error {
	player, err := pm.Get(playerID)
	if err != nil {
		return err
	}
	if player.Balance < amount {
		return fmt.Errorf("player %s balance %d, debit %d: %w",
			playerID, player.Balance, amount, ErrInsufficientBalance)
	}
	player.Balance -= amount
	player.Version++
	return nil
}

// SetPlayer directly sets a player (used for snapshot restore)
func (pm *PlayerManager) SetPlayer(player *Player) {
	pm.players[player.PlayerID] = player
}

// GetAllPlayers returns all players (for iteration)
func (pm *PlayerManager) GetAllPlayers() []*Player {
	result := make([]*Player, 0, len(pm.players))
	for _, player := range pm.players {
		result = append(result, player)
	}
	return result
}

// Count returns the number of registered players
func (pm *PlayerManager) Count() int {
	return len(pm.players)
}
