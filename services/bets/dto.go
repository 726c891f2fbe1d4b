package bets

// BetRequest is the JSON body of a new bet.
type BetRequest struct {
	Match string `json:"match" binding:"required"`
	Team1 string `json:"team1" binding:"required"`
	Team2 string `json:"team2" binding:"required"`
	BetOn string `json:"betOn" binding:"required"`
}
