package admin

import "github.com/nvbf/torneo/repos/store"

// Draft is an admin's local edit of the tournament. Nil fields keep the
// stored value. Scorers and keepers use the "name,value;name,value" text
// format of the admin panel.
type Draft struct {
	Groups             []store.Group         `json:"groups"`
	KnockoutStage      []store.KnockoutStage `json:"knockoutStage"`
	TopScorers         *string               `json:"topScorers"`
	LeastBeatenKeepers *string               `json:"leastBeatenKeepers"`
	LatestNews         *string               `json:"latestNews"`
	LiveStreamURL      *string               `json:"liveStreamUrl"`
}

type LoginRequest struct {
	Password string `json:"password" form:"password"`
}
