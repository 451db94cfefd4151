package match

import (
	"errors"
	"fmt"
)

// ValidationError marks data-quality failures: the match is junk, the
// pipeline is fine. Callers use IsValidationError to decide between
// skipping one match and aborting the crawl.
type ValidationError interface {
	error
	validation()
}

// IsValidationError reports whether err (or anything it wraps) is one of
// the validation failures below.
func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// RosterError reports a participant assigned to neither the blue nor the
// red team.
type RosterError struct {
	MatchID string
	PUUID   string
	TeamID  int32
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("match %s: participant %s is on team %d, not blue or red", e.MatchID, e.PUUID, e.TeamID)
}

func (*RosterError) validation() {}

// TeamSizeError reports a side with other than five players.
type TeamSizeError struct {
	MatchID string
	Side    Side
	Count   int
}

func (e *TeamSizeError) Error() string {
	return fmt.Sprintf("match %s: %s team has %d players, should be %d", e.MatchID, e.Side, e.Count, TeamSize)
}

func (*TeamSizeError) validation() {}

// NoWinnerError reports a match where neither side is marked as the winner.
type NoWinnerError struct {
	MatchID string
}

func (e *NoWinnerError) Error() string {
	return fmt.Sprintf("match %s: no winning team", e.MatchID)
}

func (*NoWinnerError) validation() {}

// ParticipantCountError reports a match with other than ten participants.
type ParticipantCountError struct {
	MatchID string
	Count   int
}

func (e *ParticipantCountError) Error() string {
	return fmt.Sprintf("match %s: %d participants total, should be %d", e.MatchID, e.Count, 2*TeamSize)
}

func (*ParticipantCountError) validation() {}

// Reason returns the metrics label for a validation failure.
func Reason(err error) string {
	var (
		roster       *RosterError
		teamSize     *TeamSizeError
		noWinner     *NoWinnerError
		participants *ParticipantCountError
	)
	switch {
	case errors.As(err, &roster):
		return "roster"
	case errors.As(err, &teamSize):
		return "team_size"
	case errors.As(err, &noWinner):
		return "no_winner"
	case errors.As(err, &participants):
		return "participant_count"
	default:
		return "unknown"
	}
}
