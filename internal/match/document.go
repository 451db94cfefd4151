// Package match defines the normalized match document, the summoner record,
// and the validation that turns raw API matches into documents.
package match

// TeamSize is the number of players on each side of a match.
const TeamSize = 5

// Side identifies one of the two teams in a match.
type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// Document is the normalized form of one completed ARAM match. It is
// written exactly once; later writes with the same MatchID are no-ops.
type Document struct {
	MatchID    string
	BlueChamps [TeamSize]int32
	RedChamps  [TeamSize]int32
	BlueWin    bool
	GameStart  int64 // unix millis, as reported upstream
}

// SummonerRecord is one node of the crawl frontier. LastClaimedAt is a unix
// timestamp that only advances when the scheduler claims the record; it is
// zero from creation until the first claim.
type SummonerRecord struct {
	PUUID         string
	LastClaimedAt int64
	ClaimedBy     string
}
