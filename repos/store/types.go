package store

import "time"

const PlaceholderTeam = "TBD"

type Match struct {
	Team1  string `firestore:"team1" json:"team1"`
	Team2  string `firestore:"team2" json:"team2"`
	Score1 int    `firestore:"score1" json:"score1"`
	Score2 int    `firestore:"score2" json:"score2"`
}

// Label is the "TeamA vs TeamB" form used for bets and the match selector.
func (m Match) Label() string {
	return m.Team1 + " vs " + m.Team2
}

type Group struct {
	Name    string  `firestore:"name" json:"name"`
	Matches []Match `firestore:"matches" json:"matches"`
}

type KnockoutStage struct {
	Name    string  `firestore:"name" json:"name"`
	Matches []Match `firestore:"matches" json:"matches"`
}

type PlayerStat struct {
	Name  string `firestore:"name" json:"name"`
	Goals int    `firestore:"goals" json:"goals"`
}

type KeeperStat struct {
	Name          string `firestore:"name" json:"name"`
	GoalsConceded int    `firestore:"goalsConceded" json:"goalsConceded"`
}

// Tournament is the single shared document. Writers replace it whole and the
// last write wins.
type Tournament struct {
	Groups             []Group         `firestore:"groups" json:"groups"`
	KnockoutStage      []KnockoutStage `firestore:"knockoutStage" json:"knockoutStage"`
	TopScorers         []PlayerStat    `firestore:"topScorers" json:"topScorers"`
	LeastBeatenKeepers []KeeperStat    `firestore:"leastBeatenKeepers" json:"leastBeatenKeepers"`
	LatestNews         string          `firestore:"latestNews" json:"latestNews"`
	LiveStreamURL      string          `firestore:"liveStreamUrl" json:"liveStreamUrl"`
}

// Clone returns a deep copy so callers can edit a draft without touching a
// shared snapshot.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	if t.Groups != nil {
		c.Groups = make([]Group, len(t.Groups))
		for i, g := range t.Groups {
			c.Groups[i] = Group{Name: g.Name, Matches: cloneSlice(g.Matches)}
		}
	}
	if t.KnockoutStage != nil {
		c.KnockoutStage = make([]KnockoutStage, len(t.KnockoutStage))
		for i, s := range t.KnockoutStage {
			c.KnockoutStage[i] = KnockoutStage{Name: s.Name, Matches: cloneSlice(s.Matches)}
		}
	}
	c.TopScorers = cloneSlice(t.TopScorers)
	c.LeastBeatenKeepers = cloneSlice(t.LeastBeatenKeepers)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

type Bet struct {
	ID        string    `firestore:"-" json:"id"`
	Match     string    `firestore:"match" json:"match"`
	Team1     string    `firestore:"team1" json:"team1"`
	Team2     string    `firestore:"team2" json:"team2"`
	BetOn     string    `firestore:"betOn" json:"betOn"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	UserID    string    `firestore:"userId" json:"userId"`
}
