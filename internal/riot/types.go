package riot

// Team identifiers used by the match-v5 API.
const (
	TeamBlue int32 = 100
	TeamRed  int32 = 200
)

// ARAM is the queue id for Howling Abyss 5v5 ARAM games.
const ARAM = 450

// Account represents the response from /riot/account/v1/accounts/by-riot-id.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Match represents the response from /lol/match/v5/matches/{matchId},
// reduced to the fields the pipeline consumes.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameStartTimestamp int64         `json:"gameStartTimestamp"` // unix millis
	QueueID            int           `json:"queueId"`
	Participants       []Participant `json:"participants"`
	Teams              []TeamInfo    `json:"teams"`
}

type Participant struct {
	PUUID      string `json:"puuid"`
	ChampionID int32  `json:"championId"`
	TeamID     int32  `json:"teamId"`
}

type TeamInfo struct {
	TeamID int32 `json:"teamId"`
	Win    bool  `json:"win"`
}
