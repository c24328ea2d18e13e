package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Description     *string          `db:"description" json:"description"`
	StartsAt        time.Time        `db:"starts_at" json:"starts_at"`
	Status          TournamentStatus `db:"status" json:"status"`
	MaxParticipants int              `db:"max_participants" json:"max_participants"`
	CreatedBy       uuid.UUID        `db:"created_by" json:"created_by"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// ValidBracketSize reports whether n is an allowed bracket size.
// Sizes are restricted to powers of two so every round halves cleanly.
func ValidBracketSize(n int) bool {
	switch n {
	case 4, 8, 16, 32:
		return true
	}
	return false
}
