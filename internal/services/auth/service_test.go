package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-go/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage/memory"
	"github.com/mcoot/battleship-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	s.service = New(s.storage, s.clock, s.random, cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

// issueFor creates a player holding a freshly issued token
func (s *ServiceSuite) issueFor(gameID model.GameID, playerID model.PlayerID) Credentials {
	creds, fingerprint, err := s.service.Issue(gameID, playerID)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{
		ID:               playerID,
		Name:             "Alice",
		TokenFingerprint: fingerprint,
	}))
	return creds
}

// Issue tests

func (s *ServiceSuite) TestIssueProducesSignedToken() {
	s.random.QueueString("jti-1")
	creds, fingerprint, err := s.service.Issue("game-1", "p1")
	s.Require().NoError(err)

	s.Equal(model.GameID("game-1"), creds.GameID)
	s.Equal(model.PlayerID("p1"), creds.PlayerID)
	s.Equal(Fingerprint(creds.Token), fingerprint)

	var claims Claims
	_, err = jwt.ParseWithClaims(creds.Token, &claims, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	s.Require().NoError(err)
	s.Equal("p1", claims.Subject)
	s.Equal("game-1", claims.GameID)
	s.Equal("bsgame", claims.Issuer)
	s.Equal("jti-1", claims.ID)
	s.Equal(s.clock.Now().Unix(), claims.IssuedAt.Unix())
}

func (s *ServiceSuite) TestFingerprintIsStable() {
	s.Equal(Fingerprint("abc"), Fingerprint("abc"))
	s.NotEqual(Fingerprint("abc"), Fingerprint("abd"))
	s.Len(Fingerprint("abc"), 64)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	creds := s.issueFor("game-1", "p1")

	player, err := s.service.Authenticate(s.ctx, "game-1", "p1", creds.Token)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), player.ID)
}

func (s *ServiceSuite) TestAuthenticateUnknownPlayerIsUnauthorized() {
	creds := s.issueFor("game-1", "p1")

	_, err := s.service.Authenticate(s.ctx, "game-1", "ghost", creds.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
	s.NotErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestAuthenticateWrongGame() {
	creds := s.issueFor("game-1", "p1")

	_, err := s.service.Authenticate(s.ctx, "game-2", "p1", creds.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateOtherPlayersToken() {
	s.issueFor("game-1", "p1")
	other := s.issueFor("game-1", "p2")

	_, err := s.service.Authenticate(s.ctx, "game-1", "p1", other.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateEmptyToken() {
	s.issueFor("game-1", "p1")

	_, err := s.service.Authenticate(s.ctx, "game-1", "p1", "")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateGarbageToken() {
	s.issueFor("game-1", "p1")

	_, err := s.service.Authenticate(s.ctx, "game-1", "p1", "not-a-jwt")
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateRevokedByNewFingerprint() {
	old := s.issueFor("game-1", "p1")
	s.issueFor("game-1", "p1")

	_, err := s.service.Authenticate(s.ctx, "game-1", "p1", old.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticatePlayerWithoutCredential() {
	creds, _, err := s.service.Issue("game-1", "p2")
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "p2", Name: "Bob"}))

	_, err = s.service.Authenticate(s.ctx, "game-1", "p2", creds.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateRejectsOtherSecret() {
	creds := s.issueFor("game-1", "p1")

	cfg := DefaultConfig()
	cfg.Secret = "different"
	other := New(s.storage, s.clock, s.random, cfg, testutil.NopLogger())

	_, err := other.Authenticate(s.ctx, "game-1", "p1", creds.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateRejectsOtherIssuer() {
	creds := s.issueFor("game-1", "p1")

	cfg := Config{Secret: "test-secret", Issuer: "someone-else"}
	other := New(s.storage, s.clock, s.random, cfg, testutil.NopLogger())

	_, err := other.Authenticate(s.ctx, "game-1", "p1", creds.Token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestAuthenticateRejectsUnsignedToken() {
	s.issueFor("game-1", "p1")
	claims := Claims{GameID: "game-1", RegisteredClaims: jwt.RegisteredClaims{Subject: "p1", Issuer: "bsgame"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, "game-1", "p1", token)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ServiceSuite) TestGeneratedSecretWhenMissing() {
	s.random.QueueString("generated-secret")
	svc := New(s.storage, s.clock, s.random, Config{}, testutil.NopLogger())

	s.Equal([]byte("generated-secret"), svc.secret)
	s.Equal("bsgame", svc.issuer)
}
