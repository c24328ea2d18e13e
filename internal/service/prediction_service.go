package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/flexline/gymarena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PredictionService struct {
	db              *sqlx.DB
	store           *store.TournamentStore
	predictionStore *store.PredictionStore
}

func NewPredictionService(db *sqlx.DB, store *store.TournamentStore, predictionStore *store.PredictionStore) *PredictionService {
	return &PredictionService{db: db, store: store, predictionStore: predictionStore}
}

// RecordPrediction upserts the session user's pick for a match. Legal
// while the tournament is active, both slots are filled and no winner
// exists; a resolved match freezes its predictions.
func (s *PredictionService) RecordPrediction(ctx context.Context, matchID uuid.UUID, predictedWinnerID uuid.UUID) (*bracket.Prediction, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	match, err := s.store.GetMatch(ctx, matchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	tournament, err := s.store.GetTournament(ctx, match.TournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	if tournament.Status != bracket.TournamentActive {
		return nil, bracket.ErrTournamentNotActive
	}
	if match.Complete() {
		return nil, bracket.ErrMatchComplete
	}
	if !match.Ready() {
		return nil, bracket.ErrMatchNotReady
	}
	if !match.HasPlayer(predictedWinnerID) {
		return nil, bracket.ErrIllegalWinner
	}

	now := time.Now().UTC()
	prediction := bracket.Prediction{
		ID:                uuid.New(),
		UserID:            userID,
		MatchID:           match.ID,
		PredictedWinnerID: predictedWinnerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.predictionStore.UpsertPrediction(ctx, &prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (s *PredictionService) Leaderboard(ctx context.Context, tournamentID string) ([]store.LeaderboardRow, error) {
	return s.predictionStore.Leaderboard(ctx, tournamentID)
}
