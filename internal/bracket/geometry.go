package bracket

import (
	"fmt"
	"math"
)

// TotalRounds returns the number of rounds for a full bracket of the
// given size. Only meaningful for sizes accepted by ValidBracketSize.
func TotalRounds(maxParticipants int) int {
	return int(math.Log2(float64(maxParticipants)))
}

// MatchesInRound returns how many matches round r holds in a bracket of
// the given size: half the remaining field each round.
func MatchesInRound(maxParticipants, round int) int {
	return maxParticipants / int(math.Pow(2, float64(round)))
}

// InitialSlot maps a participant seed to its round-1 position. Seeds
// pair off in join order: 1v2 in match 1, 3v4 in match 2, and so on,
// with odd seeds taking slot 1.
func InitialSlot(seed int) (matchNumber, slot int) {
	matchNumber = (seed + 1) / 2
	slot = Slot2
	if seed%2 != 0 {
		slot = Slot1
	}
	return matchNumber, slot
}

// NextSlot returns the downstream position a winner advances to.
// Winners of adjacent matches meet: the winner of match n in one round
// fills slot 1 or 2 of match ceil(n/2) in the next, by parity. Must not
// be called for the final round, which has no downstream match.
func NextSlot(roundNumber, matchNumber int) (nextRound, nextMatch, slot int) {
	nextRound = roundNumber + 1
	nextMatch = (matchNumber + 1) / 2
	slot = Slot2
	if matchNumber%2 != 0 {
		slot = Slot1
	}
	return nextRound, nextMatch, slot
}

// RoundLabel names a round for display. The last three rounds get their
// traditional names; anything earlier is numbered.
func RoundLabel(roundNumber, totalRounds int) string {
	switch totalRounds - roundNumber {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	}
	return fmt.Sprintf("Round %d", roundNumber)
}
