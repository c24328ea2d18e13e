package bracket

import "errors"

var (
	ErrInvalidBracketSize  = errors.New("max participants must be 4, 8, 16 or 32")
	ErrTournamentNotOpen   = errors.New("tournament is not open for enrollment")
	ErrTournamentNotActive = errors.New("tournament is not active")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrAlreadyJoined       = errors.New("already joined this tournament")
	ErrBracketNotFull      = errors.New("tournament still has open slots")
	ErrNotOrganizer        = errors.New("only the tournament organizer may do this")
	ErrMatchNotReady       = errors.New("match does not have both players yet")
	ErrMatchComplete       = errors.New("match already has a winner")
	ErrIllegalWinner       = errors.New("winner is not part of this match")
)
