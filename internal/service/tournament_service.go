package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/gamify"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/flexline/gymarena/internal/store"
	"github.com/flexline/gymarena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db              *sqlx.DB
	store           *store.TournamentStore
	userStore       *store.UserStore
	predictionStore *store.PredictionStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, userStore *store.UserStore, predictionStore *store.PredictionStore) *TournamentService {
	return &TournamentService{db: db, store: store, userStore: userStore, predictionStore: predictionStore}
}

type CreateTournamentInput struct {
	Name            string
	Description     string
	StartsAt        time.Time
	MaxParticipants int
}

// generateMatchShells builds the empty match records reserving the full
// bracket structure, max−1 in total. Round-1 slots are filled later as
// participants join; later rounds only ever fill by propagation.
func generateMatchShells(tournamentID uuid.UUID, maxParticipants int) []bracket.Match {
	var matches []bracket.Match

	totalRounds := bracket.TotalRounds(maxParticipants)
	for r := 1; r <= totalRounds; r++ {
		for n := 1; n <= bracket.MatchesInRound(maxParticipants, r); n++ {
			matches = append(matches, bracket.Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				RoundNumber:  r,
				MatchNumber:  n,
			})
		}
	}

	return matches
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (uuid.UUID, error) {
	if !bracket.ValidBracketSize(input.MaxParticipants) {
		return uuid.Nil, bracket.ErrInvalidBracketSize
	}

	organizerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:              tournamentID,
		Name:            input.Name,
		Description:     utils.StringOrNil(input.Description),
		StartsAt:        input.StartsAt,
		Status:          bracket.TournamentUpcoming,
		MaxParticipants: input.MaxParticipants,
		CreatedBy:       organizerID,
	}

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, err
	}

	if err := s.store.CreateMatches(ctx, tx, generateMatchShells(tournamentID, input.MaxParticipants)); err != nil {
		return uuid.Nil, err
	}

	return tournamentID, tx.Commit()
}

// JoinTournament enrolls the session user, assigning the next seed and
// dropping them into their round-1 slot.
func (s *TournamentService) JoinTournament(ctx context.Context, tournamentID string) (*bracket.Participant, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	if tournament.Status != bracket.TournamentUpcoming {
		return nil, bracket.ErrTournamentNotOpen
	}

	joined, err := s.store.HasParticipantTx(ctx, tx, tournamentID, userID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, bracket.ErrAlreadyJoined
	}

	count, err := s.store.CountParticipantsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= tournament.MaxParticipants {
		return nil, bracket.ErrTournamentFull
	}

	participant := bracket.Participant{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		UserID:       userID,
		Seed:         count + 1,
	}

	if err := s.store.CreateParticipant(ctx, tx, &participant); err != nil {
		return nil, err
	}

	matchNumber, slot := bracket.InitialSlot(participant.Seed)
	match, err := s.store.FindMatchTx(ctx, tx, tournamentID, 1, matchNumber)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("round 1 match %d missing for tournament %s", matchNumber, tournamentID)
	}

	if err := s.store.SetPlayerSlotTx(ctx, tx, match.ID, slot, userID); err != nil {
		return nil, fmt.Errorf("failed to fill round 1 slot: %w", err)
	}

	if err := s.userStore.AddXPTx(ctx, tx, userID, gamify.XPJoinTournament); err != nil {
		return nil, err
	}

	return &participant, tx.Commit()
}

// StartTournament flips an upcoming tournament to active. Only the
// organizer may start it, and only once every slot is taken, so round 1
// never runs with half-filled matches.
func (s *TournamentService) StartTournament(ctx context.Context, tournamentID string) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return fmt.Errorf("user ID not found in the context")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to get tournament: %w", err)
	}

	if tournament.CreatedBy != userID {
		return bracket.ErrNotOrganizer
	}
	if tournament.Status != bracket.TournamentUpcoming {
		return bracket.ErrTournamentNotOpen
	}

	count, err := s.store.CountParticipantsTx(ctx, tx, tournamentID)
	if err != nil {
		return err
	}
	if count < tournament.MaxParticipants {
		return bracket.ErrBracketNotFull
	}

	if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentActive); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]store.TournamentSummary, error) {
	return s.store.ListTournamentSummaries(ctx)
}
