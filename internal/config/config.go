package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvTeamID         = "APPLE_TEAM_ID"
	EnvKeyID          = "APPLE_KEY_ID"
	EnvPrivateKeyPath = "APPLE_PRIVATE_KEY_PATH"
	EnvAPIURL         = "APPLE_API_URL"
	EnvGCSCredentials = "GCS_CREDENTIALS_FILE"
)

// ErrMissingValue is returned when a required environment variable is unset or blank.
var ErrMissingValue = errors.New("missing configuration value")

// Credentials identifies the developer account used to sign API tokens.
type Credentials struct {
	TeamID         string
	KeyID          string
	PrivateKeyPath string

	// APIURL is loaded for the API client that will consume the token.
	// Nothing in this program calls the API yet.
	APIURL string

	// GCSCredentialsFile is optional and only used when PrivateKeyPath
	// points at a gs:// object.
	GCSCredentialsFile string
}

// LoadDotEnv reads a dotenv file into the process environment.
// Variables already set in the environment take precedence.
// It reports whether the file was found.
func LoadDotEnv(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}

// LoadFromEnv builds Credentials from the process environment.
func LoadFromEnv() (Credentials, error) {
	var creds Credentials
	var err error

	if creds.TeamID, err = require(EnvTeamID); err != nil {
		return Credentials{}, err
	}
	if creds.KeyID, err = require(EnvKeyID); err != nil {
		return Credentials{}, err
	}
	if creds.PrivateKeyPath, err = require(EnvPrivateKeyPath); err != nil {
		return Credentials{}, err
	}
	if creds.APIURL, err = require(EnvAPIURL); err != nil {
		return Credentials{}, err
	}
	creds.APIURL = strings.TrimRight(creds.APIURL, "/")
	creds.GCSCredentialsFile = strings.TrimSpace(os.Getenv(EnvGCSCredentials))

	return creds, nil
}

// Load reads the dotenv file at path (if present) and then the environment.
func Load(path string) (Credentials, error) {
	if _, err := LoadDotEnv(path); err != nil {
		return Credentials{}, err
	}
	return LoadFromEnv()
}

func require(name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s not set", ErrMissingValue, name)
	}
	return v, nil
}
