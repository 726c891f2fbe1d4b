package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/xerrors"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/pkg/metrics"
	"github.com/nvbf/torneo/pkg/statsCodec"
	"github.com/nvbf/torneo/repos/store"
)

var (
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrNotLoaded       = errors.New("tournament not loaded")
)

// Tournaments is what the admin panel needs from the tournament store.
type Tournaments interface {
	Current() (*store.Tournament, bool)
	Save(ctx context.Context, t *store.Tournament) error
}

// Bets is what the admin panel needs from the bet ledger.
type Bets interface {
	ListAll(ctx context.Context) ([]store.Bet, error)
}

type AdminService struct {
	passwordHash []byte
	sessions     *auth.Sessions
	tournaments  Tournaments
	bets         Bets
}

// NewAdminService accepts either a plain secret or a bcrypt hash of it.
func NewAdminService(password string, sessions *auth.Sessions, tournaments Tournaments, bets Bets) (*AdminService, error) {
	if password == "" {
		return nil, errors.New("admin password is required")
	}
	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, xerrors.Errorf("hash admin password: %w", err)
		}
	}
	return &AdminService{
		passwordHash: hash,
		sessions:     sessions,
		tournaments:  tournaments,
		bets:         bets,
	}, nil
}

// Login checks password and returns an admin session token.
func (s *AdminService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		metrics.AdminLogins.WithLabelValues("rejected").Inc()
		return "", ErrInvalidPassword
	}
	metrics.AdminLogins.WithLabelValues("ok").Inc()
	return s.sessions.IssueAdmin()
}

// ApplyDraft writes draft over the latest document and saves the result as a
// whole. Changes saved by someone else since the draft was opened are
// overwritten for every field the draft carries.
func (s *AdminService) ApplyDraft(ctx context.Context, draft Draft) (*store.Tournament, error) {
	current, ok := s.tournaments.Current()
	if !ok {
		return nil, ErrNotLoaded
	}
	doc := Merge(current, draft)
	if err := s.tournaments.Save(ctx, doc); err != nil {
		return nil, xerrors.Errorf("apply draft: %w", err)
	}
	log.Info().Msg("Tournament updated from admin draft")
	return doc, nil
}

// ReplaceTournament stores t as is.
func (s *AdminService) ReplaceTournament(ctx context.Context, t *store.Tournament) error {
	if err := s.tournaments.Save(ctx, t); err != nil {
		return xerrors.Errorf("replace tournament: %w", err)
	}
	log.Info().Msg("Tournament replaced by admin")
	return nil
}

func (s *AdminService) AllBets(ctx context.Context) ([]store.Bet, error) {
	return s.bets.ListAll(ctx)
}

// Merge returns a copy of base with every non-nil draft field applied.
func Merge(base *store.Tournament, draft Draft) *store.Tournament {
	doc := base.Clone()
	if draft.Groups != nil {
		doc.Groups = (&store.Tournament{Groups: draft.Groups}).Clone().Groups
	}
	if draft.KnockoutStage != nil {
		doc.KnockoutStage = (&store.Tournament{KnockoutStage: draft.KnockoutStage}).Clone().KnockoutStage
	}
	if draft.TopScorers != nil {
		doc.TopScorers = []store.PlayerStat{}
		for _, p := range statsCodec.DecodeScorers(*draft.TopScorers) {
			if p.Name != "" {
				doc.TopScorers = append(doc.TopScorers, p)
			}
		}
	}
	if draft.LeastBeatenKeepers != nil {
		doc.LeastBeatenKeepers = []store.KeeperStat{}
		for _, k := range statsCodec.DecodeKeepers(*draft.LeastBeatenKeepers) {
			if k.Name != "" {
				doc.LeastBeatenKeepers = append(doc.LeastBeatenKeepers, k)
			}
		}
	}
	if draft.LatestNews != nil {
		doc.LatestNews = *draft.LatestNews
	}
	if draft.LiveStreamURL != nil {
		doc.LiveStreamURL = strings.TrimSpace(*draft.LiveStreamURL)
	}
	return doc
}
