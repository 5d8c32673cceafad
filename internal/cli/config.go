package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	RoomID    string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// credentials is what the token file stores after a create or join
type credentials struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("DARTS_SERVER", "http://localhost:8080"),
		RoomID:    os.Getenv("DARTS_ROOM"),
		Token:     os.Getenv("DARTS_TOKEN"),
		TokenFile: getEnvOrDefault("DARTS_TOKEN_FILE", defaultTokenFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadToken fills the room and token from the token file where flags and
// environment left them empty
func (c *Config) LoadToken() error {
	if c.Token != "" && c.RoomID != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // No token file is fine
		}
		return err
	}

	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}
	if c.Token == "" {
		c.Token = creds.Token
	}
	if c.RoomID == "" {
		c.RoomID = creds.RoomID
	}
	return nil
}

// SaveToken saves the room membership to the token file
func (c *Config) SaveToken(roomID, playerID, token string) error {
	c.RoomID = roomID
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(credentials{RoomID: roomID, PlayerID: playerID, Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0600)
}

// ClearToken removes the token file after leaving a room
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// roomPath returns the API path for the current room
func (c *Config) roomPath(suffix string) (string, error) {
	if c.RoomID == "" {
		return "", errors.New("no room: pass --room or create/join one first")
	}
	return "/api/v1/rooms/" + c.RoomID + suffix, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dartsctl/token"
	}
	return filepath.Join(home, ".dartsctl", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
