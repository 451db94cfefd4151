package match

import (
	"github.com/JakeFAU/aram-match-crawler/internal/riot"
)

// FromRiot validates a raw API match and produces the normalized document
// plus the PUUIDs of all ten participants. On failure it returns one of the
// ValidationError types; a failed match must never yield a partial document.
//
// Champion slots keep the upstream participant iteration order per side.
// The order carries no meaning beyond "five slots", but it is stable, which
// matters for equality in tests.
func FromRiot(raw *riot.Match) (Document, [2 * TeamSize]string, error) {
	var puuids [2 * TeamSize]string
	matchID := raw.Metadata.MatchID

	if n := len(raw.Info.Participants); n != 2*TeamSize {
		return Document{}, puuids, &ParticipantCountError{MatchID: matchID, Count: n}
	}

	var blue, red []int32
	for i, p := range raw.Info.Participants {
		switch p.TeamID {
		case riot.TeamBlue:
			blue = append(blue, p.ChampionID)
		case riot.TeamRed:
			red = append(red, p.ChampionID)
		default:
			return Document{}, puuids, &RosterError{MatchID: matchID, PUUID: p.PUUID, TeamID: p.TeamID}
		}
		puuids[i] = p.PUUID
	}
	if len(blue) != TeamSize {
		return Document{}, puuids, &TeamSizeError{MatchID: matchID, Side: SideBlue, Count: len(blue)}
	}
	if len(red) != TeamSize {
		return Document{}, puuids, &TeamSizeError{MatchID: matchID, Side: SideRed, Count: len(red)}
	}

	var blueWin, redWin bool
	for _, t := range raw.Info.Teams {
		switch t.TeamID {
		case riot.TeamBlue:
			blueWin = t.Win
		case riot.TeamRed:
			redWin = t.Win
		}
	}
	// A decided match marks exactly one side; neither marked and both
	// marked are equally unusable.
	if blueWin == redWin {
		return Document{}, puuids, &NoWinnerError{MatchID: matchID}
	}

	doc := Document{
		MatchID:   matchID,
		BlueWin:   blueWin,
		GameStart: raw.Info.GameStartTimestamp,
	}
	copy(doc.BlueChamps[:], blue)
	copy(doc.RedChamps[:], red)
	return doc, puuids, nil
}
