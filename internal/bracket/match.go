package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Player slot numbers within a match.
const (
	Slot1 = 1
	Slot2 = 2
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the bracket, 1-based in both dimensions
	RoundNumber int `db:"round_number" json:"round_number"`
	MatchNumber int `db:"match_number" json:"match_number"`

	Player1ID *uuid.UUID `db:"player_1_id" json:"player_1_id"`
	Player2ID *uuid.UUID `db:"player_2_id" json:"player_2_id"`

	WinnerID    *uuid.UUID `db:"winner_id" json:"winner_id"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Ready reports whether both player slots are filled, i.e. a winner may
// legally be recorded.
func (m *Match) Ready() bool {
	return m.Player1ID != nil && m.Player2ID != nil
}

func (m *Match) Complete() bool {
	return m.WinnerID != nil
}

func (m *Match) HasPlayer(userID uuid.UUID) bool {
	if m.Player1ID != nil && *m.Player1ID == userID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == userID
}
