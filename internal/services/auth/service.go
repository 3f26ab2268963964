package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/battleship-go/internal/dependencies/clock"
	"github.com/mcoot/battleship-go/internal/dependencies/random"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

const (
	// generatedSecretLength is the length of the secret used when none is configured
	generatedSecretLength = 48
	// tokenIDLength is the length of the random jti claim
	tokenIDLength = 16
)

// Config holds configuration for the auth service
type Config struct {
	// Secret signs capability tokens. When empty a random secret is
	// generated, so tokens do not survive a restart.
	Secret string
	Issuer string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Issuer: "bsgame",
	}
}

// Credentials are handed to a player once and must be presented on every request
type Credentials struct {
	GameID   model.GameID
	PlayerID model.PlayerID
	Token    string
}

// Claims are the signed contents of a capability token
type Claims struct {
	GameID string `json:"gid"`
	jwt.RegisteredClaims
}

// Service issues and checks per-player capability tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	secret  []byte
	issuer  string
	logger  *slog.Logger
}

// New creates a new auth Service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	logger = logger.With(slog.String("component", "auth-service"))
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultConfig().Issuer
	}
	if cfg.Secret == "" {
		logger.Warn("no token secret configured, generating one; issued tokens will not survive a restart")
		cfg.Secret = rnd.String(generatedSecretLength, random.Alphanumeric)
	}
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		secret:  []byte(cfg.Secret),
		issuer:  cfg.Issuer,
		logger:  logger,
	}
}

// Issue signs a new token binding playerID to gameID and returns it with the
// fingerprint to store on the player
func (s *Service) Issue(gameID model.GameID, playerID model.PlayerID) (Credentials, string, error) {
	claims := Claims{
		GameID: string(gameID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  string(playerID),
			Issuer:   s.issuer,
			ID:       s.random.String(tokenIDLength, random.Alphanumeric),
			IssuedAt: jwt.NewNumericDate(s.clock.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Credentials{}, "", err
	}

	return Credentials{GameID: gameID, PlayerID: playerID, Token: token}, Fingerprint(token), nil
}

// Authenticate loads the player and checks the token against it.
// An unknown player is reported the same way as a bad token.
func (s *Service) Authenticate(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) (*model.Player, error) {
	if playerID == "" || token == "" {
		return nil, model.ErrUnauthorized
	}

	player, err := s.storage.GetPlayer(ctx, playerID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := s.Verify(gameID, player, token); err != nil {
		return nil, err
	}
	return player, nil
}

// Verify checks that token was issued by this service for player in gameID
// and matches the fingerprint recorded on the player
func (s *Service) Verify(gameID model.GameID, player *model.Player, token string) error {
	if !player.HasCredential() {
		return model.ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithSubject(string(player.ID)),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		s.logger.Debug("token rejected",
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()),
		)
		return model.ErrUnauthorized
	}

	if claims.GameID != string(gameID) {
		return model.ErrUnauthorized
	}

	if subtle.ConstantTimeCompare([]byte(Fingerprint(token)), []byte(player.TokenFingerprint)) != 1 {
		return model.ErrUnauthorized
	}
	return nil
}

// Fingerprint returns the hex BLAKE2b-256 digest stored in place of a token
func Fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Interface for dependency injection
type ServiceInterface interface {
	Issue(gameID model.GameID, playerID model.PlayerID) (Credentials, string, error)
	Authenticate(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) (*model.Player, error)
	Verify(gameID model.GameID, player *model.Player, token string) error
}

var _ ServiceInterface = (*Service)(nil)
