package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, description, starts_at, status, max_participants, created_by)
        VALUES (:id, :name, :description, :starts_at, :status, :max_participants, :created_by)`, tournament)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, round_number, match_number, player_1_id, player_2_id)
        VALUES (:id, :tournament_id, :round_number, :match_number, :player_1_id, :player_2_id)`, matches)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC")
	return tournaments, err
}

type TournamentSummary struct {
	bracket.Tournament
	ParticipantCount int `db:"participant_count" json:"participant_count"`
}

// ListTournamentSummaries returns every tournament with its enrollment
// count, newest first, for the dashboard feed.
func (s *TournamentStore) ListTournamentSummaries(ctx context.Context) ([]TournamentSummary, error) {
	var summaries []TournamentSummary
	err := s.db.SelectContext(ctx, &summaries, `SELECT t.*, COUNT(p.id) AS participant_count
        FROM tournaments t
        LEFT JOIN participants p ON p.tournament_id = t.id
        GROUP BY t.id
        ORDER BY t.created_at DESC`)
	return summaries, err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) CreateParticipant(ctx context.Context, tx *sqlx.Tx, participant *bracket.Participant) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO participants (id, tournament_id, user_id, seed)
        VALUES (:id, :tournament_id, :user_id, :seed)`, participant)
	return err
}

func (s *TournamentStore) CountParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM participants WHERE tournament_id = ?", tournamentID)
	return count, err
}

func (s *TournamentStore) HasParticipantTx(ctx context.Context, tx *sqlx.Tx, tournamentID string, userID uuid.UUID) (bool, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM participants WHERE tournament_id = ? AND user_id = ?", tournamentID, userID)
	return count > 0, err
}

func (s *TournamentStore) GetParticipants(ctx context.Context, tournamentID string) ([]bracket.Participant, error) {
	var participants []bracket.Participant
	err := s.db.SelectContext(ctx, &participants, "SELECT * FROM participants WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return participants, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

// FindMatchTx looks up a match by its bracket position. Returns nil
// without error when the position does not exist.
func (s *TournamentStore) FindMatchTx(ctx context.Context, tx *sqlx.Tx, tournamentID string, roundNumber, matchNumber int) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE tournament_id = ? AND round_number = ? AND match_number = ?",
		tournamentID, roundNumber, matchNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_number ASC", tournamentID)
	return matches, err
}

func (s *TournamentStore) SetPlayerSlotTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, slot int, userID uuid.UUID) error {
	column := "player_1_id"
	if slot == bracket.Slot2 {
		column = "player_2_id"
	}
	// Slots on a decided match must stay frozen
	res, err := tx.ExecContext(ctx, "UPDATE matches SET "+column+" = ? WHERE id = ? AND winner_id IS NULL", userID, matchID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return bracket.ErrMatchComplete
	}
	return nil
}

// SetWinnerTx marks a match terminal. The conditional update makes a
// repeat call fail with ErrMatchComplete instead of re-propagating.
func (s *TournamentStore) SetWinnerTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID, winnerID uuid.UUID, completedAt time.Time) error {
	res, err := tx.ExecContext(ctx, "UPDATE matches SET winner_id = ?, completed_at = ? WHERE id = ? AND winner_id IS NULL",
		winnerID, completedAt, matchID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return bracket.ErrMatchComplete
	}
	return nil
}
