package statsCodec

import "github.com/nvbf/torneo/repos/store"

func EncodeScorers(scorers []store.PlayerStat) string {
	records := make([]Record, 0, len(scorers))
	for _, p := range scorers {
		records = append(records, Record{Name: p.Name, Value: p.Goals})
	}
	return Encode(records)
}

func DecodeScorers(text string) []store.PlayerStat {
	records := Decode(text)
	scorers := make([]store.PlayerStat, 0, len(records))
	for _, r := range records {
		scorers = append(scorers, store.PlayerStat{Name: r.Name, Goals: r.Value})
	}
	return scorers
}

func EncodeKeepers(keepers []store.KeeperStat) string {
	records := make([]Record, 0, len(keepers))
	for _, k := range keepers {
		records = append(records, Record{Name: k.Name, Value: k.GoalsConceded})
	}
	return Encode(records)
}

func DecodeKeepers(text string) []store.KeeperStat {
	records := Decode(text)
	keepers := make([]store.KeeperStat, 0, len(records))
	for _, r := range records {
		keepers = append(keepers, store.KeeperStat{Name: r.Name, GoalsConceded: r.Value})
	}
	return keepers
}
