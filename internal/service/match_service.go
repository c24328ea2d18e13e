package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/gamify"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/flexline/gymarena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db              *sqlx.DB
	store           *store.TournamentStore
	predictionStore *store.PredictionStore
	userStore       *store.UserStore
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, predictionStore *store.PredictionStore, userStore *store.UserStore) *MatchService {
	return &MatchService{db: db, store: store, predictionStore: predictionStore, userStore: userStore}
}

// RecordWinner marks a match decided and advances the winner. The
// winner write, the downstream slot fill, any tournament completion and
// the XP awards all commit in one transaction, so a failure partway
// leaves no half-propagated bracket.
func (s *MatchService) RecordWinner(ctx context.Context, matchID uuid.UUID, winnerID uuid.UUID) (*bracket.Match, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, match.TournamentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	if tournament.CreatedBy != userID {
		return nil, bracket.ErrNotOrganizer
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
	if !match.HasPlayer(winnerID) {
		return nil, bracket.ErrIllegalWinner
	}

	now := time.Now().UTC()
	if err := s.store.SetWinnerTx(ctx, tx, match.ID, winnerID, now); err != nil {
		return nil, err
	}
	match.WinnerID = &winnerID
	match.CompletedAt = &now

	totalRounds := bracket.TotalRounds(tournament.MaxParticipants)
	if match.RoundNumber < totalRounds {
		nextRound, nextMatchNumber, slot := bracket.NextSlot(match.RoundNumber, match.MatchNumber)
		nextMatch, err := s.store.FindMatchTx(ctx, tx, tournament.ID.String(), nextRound, nextMatchNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to get next match: %w", err)
		}
		if nextMatch == nil {
			return nil, fmt.Errorf("match shell missing at round %d match %d", nextRound, nextMatchNumber)
		}
		if err := s.store.SetPlayerSlotTx(ctx, tx, nextMatch.ID, slot, winnerID); err != nil {
			return nil, fmt.Errorf("failed to fill next slot: %w", err)
		}
	} else {
		// Final decided, the winner is the champion
		if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID.String(), bracket.TournamentCompleted); err != nil {
			return nil, fmt.Errorf("failed to update tournament status: %w", err)
		}
		if err := s.userStore.AddXPTx(ctx, tx, winnerID, gamify.XPTournamentWin); err != nil {
			return nil, err
		}
	}

	if err := s.userStore.AddXPTx(ctx, tx, winnerID, gamify.XPMatchWin); err != nil {
		return nil, err
	}

	predictors, err := s.predictionStore.CorrectPredictorsTx(ctx, tx, match.ID, winnerID)
	if err != nil {
		return nil, err
	}
	for _, predictorID := range predictors {
		if err := s.userStore.AddXPTx(ctx, tx, predictorID, gamify.XPCorrectPrediction); err != nil {
			return nil, err
		}
	}

	return match, tx.Commit()
}
