package auth

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/samborkent/uuidv7"
	"golang.org/x/xerrors"
)

var ErrTokenUnsupported = errors.New("identity provider cannot verify tokens")

// IdentityProvider hands out anonymous user ids.
type IdentityProvider interface {
	// Verify resolves a client-side ID token to its user id.
	Verify(ctx context.Context, idToken string) (string, error)
	// Create mints a new anonymous identity.
	Create(ctx context.Context) (string, error)
}

// FirebaseIdentity uses Firebase Auth. Users created here have no sign-in
// provider, the same as a client-side anonymous sign in.
type FirebaseIdentity struct {
	client *firebaseauth.Client
}

func NewFirebaseIdentity(ctx context.Context, app *firebase.App) (*FirebaseIdentity, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to initialize Firebase Auth: %w", err)
	}
	return &FirebaseIdentity{client: client}, nil
}

func (f *FirebaseIdentity) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", xerrors.Errorf("invalid ID token: %w", err)
	}
	return token.UID, nil
}

func (f *FirebaseIdentity) Create(ctx context.Context) (string, error) {
	user, err := f.client.CreateUser(ctx, &firebaseauth.UserToCreate{})
	if err != nil {
		return "", xerrors.Errorf("create anonymous user: %w", err)
	}
	return user.UID, nil
}

// LocalIdentity mints UUIDv7 ids without any external service.
type LocalIdentity struct{}

func (LocalIdentity) Verify(ctx context.Context, idToken string) (string, error) {
	return "", ErrTokenUnsupported
}

func (LocalIdentity) Create(ctx context.Context) (string, error) {
	return uuidv7.New().String(), nil
}
