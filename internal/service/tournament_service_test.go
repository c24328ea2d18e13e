package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/flexline/gymarena/internal/bracket"
	"github.com/flexline/gymarena/internal/middleware"
	"github.com/flexline/gymarena/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// A single connection keeps every query on the same in-memory database
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func newTestTournamentService(db *sqlx.DB) *TournamentService {
	return NewTournamentService(db, store.NewTournamentStore(db), store.NewUserStore(db), store.NewPredictionStore(db))
}

func ctxForUser(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

func createTestUser(t *testing.T, db *sqlx.DB, username string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec("INSERT INTO users (id, email, username) VALUES (?, ?, ?)",
		id, username+"@example.com", username)
	require.NoError(t, err)
	return id
}

func createTestTournament(t *testing.T, svc *TournamentService, organizerID uuid.UUID, size int) uuid.UUID {
	t.Helper()

	id, err := svc.CreateTournament(ctxForUser(organizerID), CreateTournamentInput{
		Name:            fmt.Sprintf("Deadlift Open %d", size),
		StartsAt:        time.Now().Add(24 * time.Hour).UTC(),
		MaxParticipants: size,
	})
	require.NoError(t, err)
	return id
}

func TestCreateTournamentShells(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tournamentStore := store.NewTournamentStore(db)
	svc := newTestTournamentService(db)
	organizerID := uuid.MustParse(middleware.FrontDeskUserID)

	testCases := []struct {
		size               int
		expectedMatchCount int
		expectedRounds     int
	}{
		{4, 3, 2},
		{8, 7, 3},
		{16, 15, 4},
		{32, 31, 5},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("size %d", tc.size), func(t *testing.T) {
			tournamentID := createTestTournament(t, svc, organizerID, tc.size)

			tournament, err := tournamentStore.GetTournament(context.Background(), tournamentID.String())
			require.NoError(t, err)
			assert.Equal(t, bracket.TournamentUpcoming, tournament.Status)
			assert.Equal(t, tc.size, tournament.MaxParticipants)
			assert.Equal(t, organizerID, tournament.CreatedBy)

			matches, err := tournamentStore.GetMatches(context.Background(), tournamentID.String())
			require.NoError(t, err)
			require.Len(t, matches, tc.expectedMatchCount)

			perRound := make(map[int]int)
			for _, m := range matches {
				perRound[m.RoundNumber]++
				assert.Nil(t, m.Player1ID, "shells start empty")
				assert.Nil(t, m.Player2ID, "shells start empty")
				assert.Nil(t, m.WinnerID)
			}
			require.Len(t, perRound, tc.expectedRounds)
			for r := 1; r <= tc.expectedRounds; r++ {
				assert.Equal(t, bracket.MatchesInRound(tc.size, r), perRound[r], "round %d", r)
			}
		})
	}
}

func TestCreateTournamentRejectsInvalidSize(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newTestTournamentService(db)
	ctx := ctxForUser(uuid.MustParse(middleware.FrontDeskUserID))

	for _, size := range []int{0, 2, 3, 5, 6, 12, 64} {
		_, err := svc.CreateTournament(ctx, CreateTournamentInput{
			Name:            "Broken",
			StartsAt:        time.Now().UTC(),
			MaxParticipants: size,
		})
		assert.ErrorIs(t, err, bracket.ErrInvalidBracketSize, "size %d", size)
	}
}

func TestJoinTournamentSeeding(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tournamentStore := store.NewTournamentStore(db)
	svc := newTestTournamentService(db)
	organizerID := uuid.MustParse(middleware.FrontDeskUserID)
	tournamentID := createTestTournament(t, svc, organizerID, 8)

	userIDs := make([]uuid.UUID, 8)
	for i := range userIDs {
		userIDs[i] = createTestUser(t, db, fmt.Sprintf("member%d", i+1))
		participant, err := svc.JoinTournament(ctxForUser(userIDs[i]), tournamentID.String())
		require.NoError(t, err)
		assert.Equal(t, i+1, participant.Seed, "seeds assigned in join order")
	}

	matches, err := tournamentStore.GetMatches(context.Background(), tournamentID.String())
	require.NoError(t, err)

	// Seeds pair off in join order: 1v2, 3v4, 5v6, 7v8
	for _, m := range matches {
		if m.RoundNumber != 1 {
			assert.Nil(t, m.Player1ID, "later rounds fill only by propagation")
			assert.Nil(t, m.Player2ID, "later rounds fill only by propagation")
			continue
		}
		require.NotNil(t, m.Player1ID, "round 1 match %d", m.MatchNumber)
		require.NotNil(t, m.Player2ID, "round 1 match %d", m.MatchNumber)
		assert.Equal(t, userIDs[(m.MatchNumber-1)*2], *m.Player1ID)
		assert.Equal(t, userIDs[(m.MatchNumber-1)*2+1], *m.Player2ID)
	}
}

func TestJoinTournamentRejections(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newTestTournamentService(db)
	organizerID := uuid.MustParse(middleware.FrontDeskUserID)
	tournamentID := createTestTournament(t, svc, organizerID, 4)

	members := make([]uuid.UUID, 5)
	for i := range members {
		members[i] = createTestUser(t, db, fmt.Sprintf("joiner%d", i+1))
	}

	_, err := svc.JoinTournament(ctxForUser(members[0]), tournamentID.String())
	require.NoError(t, err)

	// Joining twice is rejected
	_, err = svc.JoinTournament(ctxForUser(members[0]), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrAlreadyJoined)

	for _, id := range members[1:4] {
		_, err := svc.JoinTournament(ctxForUser(id), tournamentID.String())
		require.NoError(t, err)
	}

	// Full tournament rejects a fifth member
	_, err = svc.JoinTournament(ctxForUser(members[4]), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrTournamentFull)

	// Once active, enrollment is closed entirely
	require.NoError(t, svc.StartTournament(ctxForUser(organizerID), tournamentID.String()))
	_, err = svc.JoinTournament(ctxForUser(members[4]), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrTournamentNotOpen)
}

func TestStartTournament(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tournamentStore := store.NewTournamentStore(db)
	svc := newTestTournamentService(db)
	organizerID := uuid.MustParse(middleware.FrontDeskUserID)
	tournamentID := createTestTournament(t, svc, organizerID, 4)

	outsiderID := createTestUser(t, db, "outsider")

	// A partially enrolled bracket cannot start
	err := svc.StartTournament(ctxForUser(organizerID), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrBracketNotFull)

	for i := 0; i < 4; i++ {
		memberID := createTestUser(t, db, fmt.Sprintf("starter%d", i+1))
		_, err := svc.JoinTournament(ctxForUser(memberID), tournamentID.String())
		require.NoError(t, err)
	}

	// Only the organizer may start
	err = svc.StartTournament(ctxForUser(outsiderID), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrNotOrganizer)

	require.NoError(t, svc.StartTournament(ctxForUser(organizerID), tournamentID.String()))

	tournament, err := tournamentStore.GetTournament(context.Background(), tournamentID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, tournament.Status)

	// Starting twice is rejected
	err = svc.StartTournament(ctxForUser(organizerID), tournamentID.String())
	assert.ErrorIs(t, err, bracket.ErrTournamentNotOpen)
}

func TestListTournaments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newTestTournamentService(db)
	organizerID := uuid.MustParse(middleware.FrontDeskUserID)

	first := createTestTournament(t, svc, organizerID, 4)
	second := createTestTournament(t, svc, organizerID, 8)

	memberID := createTestUser(t, db, "lister")
	_, err := svc.JoinTournament(ctxForUser(memberID), first.String())
	require.NoError(t, err)

	summaries, err := svc.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	counts := make(map[uuid.UUID]int)
	for _, s := range summaries {
		counts[s.ID] = s.ParticipantCount
	}
	assert.Equal(t, 1, counts[first])
	assert.Equal(t, 0, counts[second])
}
