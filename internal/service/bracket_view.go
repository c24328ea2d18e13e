package service

import (
	"context"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/google/uuid"
)

type PlayerRef struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Seed      int       `json:"seed,omitempty"`
}

type BracketMatch struct {
	ID                uuid.UUID  `json:"id"`
	RoundNumber       int        `json:"round_number"`
	MatchNumber       int        `json:"match_number"`
	Player1           *PlayerRef `json:"player_1"`
	Player2           *PlayerRef `json:"player_2"`
	Winner            *PlayerRef `json:"winner"`
	PredictedWinnerID *uuid.UUID `json:"predicted_winner_id,omitempty"`
}

type BracketRound struct {
	Number  int            `json:"number"`
	Label   string         `json:"label"`
	Matches []BracketMatch `json:"matches"`
}

type BracketData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Rounds     []BracketRound      `json:"rounds"`
	Champion   *PlayerRef          `json:"champion"`
}

// GetBracket assembles the full match tree with player names resolved
// plus the caller's predictions. The champion is derived from the final
// match, there is no separate champion record.
func (s *TournamentService) GetBracket(ctx context.Context, tournamentID string) (*BracketData, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	participants, err := s.store.GetParticipants(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	seeds := make(map[uuid.UUID]int, len(participants))
	for _, p := range participants {
		seeds[p.UserID] = p.Seed
	}

	playerIDs := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		playerIDs = append(playerIDs, p.UserID)
	}
	profiles, err := s.userStore.GetUsersByIDs(ctx, playerIDs)
	if err != nil {
		return nil, err
	}

	playerRef := func(id *uuid.UUID) *PlayerRef {
		if id == nil {
			return nil
		}
		ref := &PlayerRef{ID: *id, Seed: seeds[*id]}
		if profile, ok := profiles[*id]; ok {
			ref.Username = profile.Username
			ref.AvatarURL = profile.AvatarURL
		}
		return ref
	}

	picks := make(map[uuid.UUID]uuid.UUID)
	if callerID, ok := middleware.GetUserIDFromContext(ctx); ok {
		predictions, err := s.predictionStore.GetUserPredictionsForTournament(ctx, callerID, tournamentID)
		if err != nil {
			return nil, err
		}
		for _, p := range predictions {
			picks[p.MatchID] = p.PredictedWinnerID
		}
	}

	totalRounds := bracket.TotalRounds(tournament.MaxParticipants)
	rounds := make([]BracketRound, totalRounds)
	for i := range rounds {
		rounds[i] = BracketRound{Number: i + 1, Label: bracket.RoundLabel(i+1, totalRounds)}
	}

	var champion *PlayerRef
	for _, m := range matches {
		bm := BracketMatch{
			ID:          m.ID,
			RoundNumber: m.RoundNumber,
			MatchNumber: m.MatchNumber,
			Player1:     playerRef(m.Player1ID),
			Player2:     playerRef(m.Player2ID),
			Winner:      playerRef(m.WinnerID),
		}
		if pick, ok := picks[m.ID]; ok {
			id := pick
			bm.PredictedWinnerID = &id
		}
		rounds[m.RoundNumber-1].Matches = append(rounds[m.RoundNumber-1].Matches, bm)

		if m.RoundNumber == totalRounds && m.WinnerID != nil {
			champion = playerRef(m.WinnerID)
		}
	}

	return &BracketData{
		Tournament: tournament,
		Rounds:     rounds,
		Champion:   champion,
	}, nil
}
