package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TournamentDocPath = "torneos/torneo-fixture"
	betsPathFormat    = "artifacts/%s/public/data/bets"
)

// BetsPath is the collection holding every bet of an app.
func BetsPath(appID string) string {
	return fmt.Sprintf(betsPathFormat, appID)
}

// FirestoreTournaments stores the tournament at TournamentDocPath.
type FirestoreTournaments struct {
	client *firestore.Client
}

func NewFirestoreTournaments(client *firestore.Client) *FirestoreTournaments {
	return &FirestoreTournaments{client: client}
}

func (s *FirestoreTournaments) doc() *firestore.DocumentRef {
	return s.client.Doc(TournamentDocPath)
}

func (s *FirestoreTournaments) Get(ctx context.Context) (*Tournament, error) {
	doc, err := s.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Errorf("get tournament: %w", err)
	}
	return docToTournament(doc)
}

func (s *FirestoreTournaments) Replace(ctx context.Context, t *Tournament) error {
	if _, err := s.doc().Set(ctx, t); err != nil {
		return xerrors.Errorf("replace tournament: %w", err)
	}
	return nil
}

func (s *FirestoreTournaments) CreateIfAbsent(ctx context.Context, t *Tournament) (bool, error) {
	_, err := s.doc().Create(ctx, t)
	if status.Code(err) == codes.AlreadyExists {
		return false, nil
	}
	if err != nil {
		return false, xerrors.Errorf("create tournament: %w", err)
	}
	return true, nil
}

func (s *FirestoreTournaments) Watch(ctx context.Context, fn func(*Tournament)) error {
	iter := s.doc().Snapshots(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err != nil {
			if isCancelled(ctx, err) {
				return nil
			}
			return xerrors.Errorf("watch tournament: %w", err)
		}
		if !doc.Exists() {
			log.Warn().Str("path", TournamentDocPath).Msg("Tournament document does not exist")
			continue
		}
		t, err := docToTournament(doc)
		if err != nil {
			log.Error().Err(err).Msg("Skipping unreadable tournament snapshot")
			continue
		}
		fn(t)
	}
}

// FirestoreBets stores bets in one collection per app.
type FirestoreBets struct {
	client *firestore.Client
	path   string
}

func NewFirestoreBets(client *firestore.Client, appID string) *FirestoreBets {
	return &FirestoreBets{client: client, path: BetsPath(appID)}
}

func (s *FirestoreBets) Add(ctx context.Context, bet Bet) error {
	if _, err := s.client.Collection(s.path).Doc(bet.ID).Create(ctx, bet); err != nil {
		return xerrors.Errorf("add bet %s: %w", bet.ID, err)
	}
	return nil
}

func (s *FirestoreBets) ListByUser(ctx context.Context, userID string) ([]Bet, error) {
	docs, err := s.client.Collection(s.path).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, xerrors.Errorf("list bets of %s: %w", userID, err)
	}
	return docsToBets(docs)
}

func (s *FirestoreBets) ListAll(ctx context.Context) ([]Bet, error) {
	docs, err := s.client.Collection(s.path).Documents(ctx).GetAll()
	if err != nil {
		return nil, xerrors.Errorf("list bets: %w", err)
	}
	return docsToBets(docs)
}

func (s *FirestoreBets) Watch(ctx context.Context, fn func([]Bet)) error {
	iter := s.client.Collection(s.path).Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if isCancelled(ctx, err) {
				return nil
			}
			return xerrors.Errorf("watch bets: %w", err)
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			log.Error().Err(err).Msg("Failed to read bets snapshot")
			continue
		}
		bets, err := docsToBets(docs)
		if err != nil {
			log.Error().Err(err).Msg("Skipping unreadable bets snapshot")
			continue
		}
		fn(bets)
	}
}

func docToTournament(doc *firestore.DocumentSnapshot) (*Tournament, error) {
	var t Tournament
	if err := doc.DataTo(&t); err != nil {
		// We control both the data written to Firestore and the struct, so
		// this is a consistency error.
		return nil, xerrors.Errorf(
			"consistency error. Converting %s to tournament failed: %w",
			doc.Ref.Path,
			err,
		)
	}
	return &t, nil
}

func docsToBets(docs []*firestore.DocumentSnapshot) ([]Bet, error) {
	bets := make([]Bet, 0, len(docs))
	for _, doc := range docs {
		var bet Bet
		if err := doc.DataTo(&bet); err != nil {
			return nil, xerrors.Errorf(
				"consistency error. Converting %s to bet failed: %w",
				doc.Ref.Path,
				err,
			)
		}
		bet.ID = doc.Ref.ID
		bets = append(bets, bet)
	}
	SortNewestFirst(bets)
	return bets, nil
}

// isCancelled reports whether a watch ended because it was stopped.
func isCancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) {
		return true
	}
	return status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled)
}
