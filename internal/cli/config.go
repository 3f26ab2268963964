package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL       string
	CredentialsFile string
	GameID          string
	PlayerID        string
	Token           string
	Output          string
	Verbose         bool
}

// Credentials identify one player in one game. They are saved after a game
// is created or an invite accepted, and reused by later commands.
type Credentials struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("BSGAME_SERVER", "http://localhost:8080"),
		CredentialsFile: getEnvOrDefault("BSGAME_CREDENTIALS_FILE", defaultCredentialsFile()),
		GameID:          os.Getenv("BSGAME_GAME"),
		PlayerID:        os.Getenv("BSGAME_PLAYER"),
		Token:           os.Getenv("BSGAME_TOKEN"),
		Output:          "text",
		Verbose:         false,
	}
}

// Credentials returns the active credentials
func (c *Config) Credentials() Credentials {
	return Credentials{GameID: c.GameID, PlayerID: c.PlayerID, Token: c.Token}
}

// LoadCredentials fills any credential not set by flag or env from the file
func (c *Config) LoadCredentials() error {
	data, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // No credentials file is fine
		}
		return err
	}

	var saved Credentials
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}

	if c.GameID == "" {
		c.GameID = saved.GameID
	}
	if c.PlayerID == "" {
		c.PlayerID = saved.PlayerID
	}
	if c.Token == "" {
		c.Token = saved.Token
	}
	return nil
}

// SaveCredentials makes creds active and writes them to the credentials file
func (c *Config) SaveCredentials(creds Credentials) error {
	c.GameID = creds.GameID
	c.PlayerID = creds.PlayerID
	c.Token = creds.Token

	dir := filepath.Dir(c.CredentialsFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.CredentialsFile, data, 0600)
}

// RequireGame returns an error unless credentials for a game are active
func (c *Config) RequireGame() error {
	if c.GameID == "" || c.PlayerID == "" || c.Token == "" {
		return errors.New("no game credentials: create a game, accept an invite, or pass --game, --player and --token")
	}
	return nil
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bsgame/credentials.json"
	}
	return filepath.Join(home, ".bsgame", "credentials.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
