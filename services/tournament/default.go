package tournament

import "github.com/nvbf/torneo/repos/store"

const WelcomeNews = "Bienvenidos al Torneo de Fútbol. ¡Mucha suerte a todos los equipos!"

// Default is the tournament written the first time the site starts against an
// empty store.
func Default() *store.Tournament {
	return &store.Tournament{
		Groups: []store.Group{
			defaultGroup("A"),
			defaultGroup("B"),
			defaultGroup("C"),
			defaultGroup("D"),
		},
		KnockoutStage: []store.KnockoutStage{
			placeholderStage("Cuartos de Final", 4),
			placeholderStage("Semifinal", 2),
			placeholderStage("Final", 1),
			placeholderStage("Tercer Puesto", 1),
		},
		TopScorers:         []store.PlayerStat{},
		LeastBeatenKeepers: []store.KeeperStat{},
		LatestNews:         WelcomeNews,
		LiveStreamURL:      "",
	}
}

func defaultGroup(letter string) store.Group {
	team := func(n int) string { return "Equipo " + letter + string(rune('0'+n)) }
	return store.Group{
		Name: "Grupo " + letter,
		Matches: []store.Match{
			{Team1: team(1), Team2: team(2)},
			{Team1: team(3), Team2: team(4)},
		},
	}
}

func placeholderStage(name string, matches int) store.KnockoutStage {
	stage := store.KnockoutStage{Name: name, Matches: make([]store.Match, matches)}
	for i := range stage.Matches {
		stage.Matches[i] = store.Match{Team1: store.PlaceholderTeam, Team2: store.PlaceholderTeam}
	}
	return stage
}
