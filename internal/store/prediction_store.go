package store

import (
	"context"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PredictionStore struct {
	db *sqlx.DB
}

func NewPredictionStore(db *sqlx.DB) *PredictionStore {
	return &PredictionStore{db: db}
}

// UpsertPrediction inserts or overwrites the caller's pick for a match.
// Uniqueness on (user_id, match_id) carries the upsert.
func (s *PredictionStore) UpsertPrediction(ctx context.Context, prediction *bracket.Prediction) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO predictions (id, user_id, match_id, predicted_winner_id, created_at, updated_at)
        VALUES (:id, :user_id, :match_id, :predicted_winner_id, :created_at, :updated_at)
        ON CONFLICT (user_id, match_id) DO UPDATE SET
            predicted_winner_id = excluded.predicted_winner_id,
            updated_at = excluded.updated_at`, prediction)
	return err
}

func (s *PredictionStore) GetUserPredictionsForTournament(ctx context.Context, userID uuid.UUID, tournamentID string) ([]bracket.Prediction, error) {
	var predictions []bracket.Prediction
	err := s.db.SelectContext(ctx, &predictions, `SELECT p.* FROM predictions p
        JOIN matches m ON m.id = p.match_id
        WHERE p.user_id = ? AND m.tournament_id = ?`, userID, tournamentID)
	return predictions, err
}

// CorrectPredictorsTx returns the users whose pick for the match equals
// the recorded winner. Read inside the winner transaction so XP awards
// and the result commit together.
func (s *PredictionStore) CorrectPredictorsTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, winnerID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := tx.SelectContext(ctx, &userIDs, "SELECT user_id FROM predictions WHERE match_id = ? AND predicted_winner_id = ?",
		matchID, winnerID)
	return userIDs, err
}

type LeaderboardRow struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	Correct  int       `db:"correct" json:"correct"`
	Total    int       `db:"total" json:"total"`
}

// Leaderboard scores predictions against completed matches only; open
// matches contribute nothing to either column.
func (s *PredictionStore) Leaderboard(ctx context.Context, tournamentID string) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := s.db.SelectContext(ctx, &rows, `SELECT p.user_id, u.username,
            SUM(CASE WHEN p.predicted_winner_id = m.winner_id THEN 1 ELSE 0 END) AS correct,
            COUNT(*) AS total
        FROM predictions p
        JOIN matches m ON m.id = p.match_id AND m.winner_id IS NOT NULL
        JOIN users u ON u.id = p.user_id
        WHERE m.tournament_id = ?
        GROUP BY p.user_id, u.username
        ORDER BY correct DESC, u.username ASC`, tournamentID)
	return rows, err
}
