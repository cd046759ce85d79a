package sportradar

// Schedule is the daily schedule document.
type Schedule struct {
	Games []ScheduledGame `json:"games"`
}

// ScheduledGame is one entry in the daily schedule.
type ScheduledGame struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Summary is the game summary document carrying both box scores.
type Summary struct {
	Game SummaryGame `json:"game"`
}

type SummaryGame struct {
	ID   string      `json:"id"`
	Home SummaryTeam `json:"home"`
	Away SummaryTeam `json:"away"`
}

type SummaryTeam struct {
	Abbr    string   `json:"abbr"`
	Players []Player `json:"players"`
}

// Player is one player's entry in a game summary.
type Player struct {
	PreferredName   string     `json:"preferred_name"`
	LastName        string     `json:"last_name"`
	Status          string     `json:"status"`
	Position        string     `json:"position"`
	PrimaryPosition string     `json:"primary_position"`
	Statistics      Statistics `json:"statistics"`
}

type Statistics struct {
	Hitting  *Hitting  `json:"hitting"`
	Pitching *Pitching `json:"pitching"`
}

type Hitting struct {
	Overall HittingOverall `json:"overall"`
}

type Pitching struct {
	Overall PitchingOverall `json:"overall"`
}

type HittingOverall struct {
	AB     uint         `json:"ab"`
	RBI    uint         `json:"rbi"`
	OnBase HitterOnBase `json:"onbase"`
	Runs   HitterRuns   `json:"runs"`
	Outs   OutStats     `json:"outs"`
	Steal  StealStats   `json:"steal"`
}

type HitterOnBase struct {
	S   uint `json:"s"`
	D   uint `json:"d"`
	T   uint `json:"t"`
	HR  uint `json:"hr"`
	TB  uint `json:"tb"`
	BB  uint `json:"bb"`
	IBB uint `json:"ibb"`
	HBP uint `json:"hbp"`
	H   uint `json:"h"`
}

type HitterRuns struct {
	Total uint `json:"total"`
}

type OutStats struct {
	GIDP   uint `json:"gidp"`
	KTotal uint `json:"ktotal"`
	SacHit uint `json:"sachit"`
	SacFly uint `json:"sacfly"`
}

type StealStats struct {
	Caught uint `json:"caught"`
	Stolen uint `json:"stolen"`
}

type PitchingOverall struct {
	Outs1  uint          `json:"ip_1"`
	IP     float64       `json:"ip_2"`
	OnBase PitcherOnBase `json:"onbase"`
	Runs   PitcherRuns   `json:"runs"`
	Outs   OutStats      `json:"outs"`
	Steal  StealStats    `json:"steal"`
	Games  PitcherGames  `json:"games"`
}

type PitcherOnBase struct {
	HR  uint `json:"hr"`
	TB  uint `json:"tb"`
	BB  uint `json:"bb"`
	IBB uint `json:"ibb"`
	HBP uint `json:"hbp"`
	H   uint `json:"h"`
}

type PitcherRuns struct {
	Total  uint `json:"total"`
	Earned uint `json:"earned"`
}

type PitcherGames struct {
	Win      uint `json:"win"`
	Loss     uint `json:"loss"`
	Save     uint `json:"save"`
	Shutout  uint `json:"shutout"`
	Complete uint `json:"complete"`
}
