package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is a user's pick for a match, unique per (user, match).
// Resubmitting overwrites; predictions never influence advancement.
type Prediction struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	MatchID           uuid.UUID `db:"match_id" json:"match_id"`
	PredictedWinnerID uuid.UUID `db:"predicted_winner_id" json:"predicted_winner_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
