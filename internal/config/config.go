// Package config loads application configuration from an optional YAML file
// and the environment. Environment variables win over file values, which win
// over built-in defaults. A local .env file is honored for development.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LinkedIn holds the OAuth2 app registration for LinkedIn.
type LinkedIn struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Twitter holds the OAuth1 consumer registration for Twitter/X.
type Twitter struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	CallbackURL    string `yaml:"callback_url"`
}

// Gemini holds the generation API key and model selection.
type Gemini struct {
	APIKey     string `yaml:"api_key"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
}

// Config is the full application configuration.
type Config struct {
	Host         string   `yaml:"host"`
	Port         string   `yaml:"port"`
	DatabasePath string   `yaml:"database_path"`
	FrontendURL  string   `yaml:"frontend_url"`
	JWTSecret    string   `yaml:"jwt_secret"`
	LinkedIn     LinkedIn `yaml:"linkedin"`
	Twitter      Twitter  `yaml:"twitter"`
	Gemini       Gemini   `yaml:"gemini"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load builds the configuration from defaults, the optional YAML file named
// by SOCIAL_NEXUS_CONFIG, and finally the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:         "127.0.0.1",
		Port:         "8080",
		DatabasePath: "nexus.db",
		FrontendURL:  "http://localhost:5173",
		LinkedIn: LinkedIn{
			RedirectURL: "http://localhost:8080/linkedin/callback",
		},
		Twitter: Twitter{
			CallbackURL: "http://localhost:8080/twitter/callback",
		},
		Gemini: Gemini{
			TextModel:  "gemini-2.5-flash",
			ImageModel: "gemini-2.0-flash-preview-image-generation",
		},
	}

	if path := os.Getenv("SOCIAL_NEXUS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.JWTSecret == "" {
		// Ephemeral secret: sessions won't survive a restart.
		b := make([]byte, 32)
		rand.Read(b)
		cfg.JWTSecret = hex.EncodeToString(b)
		log.Printf("⚠️  JWT_SECRET not set, generated an ephemeral secret")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfPresent(&cfg.Host, "HOST")
	setIfPresent(&cfg.Port, "PORT")
	setIfPresent(&cfg.DatabasePath, "DATABASE_PATH")
	setIfPresent(&cfg.FrontendURL, "FRONTEND_URL")
	setIfPresent(&cfg.JWTSecret, "JWT_SECRET")

	setIfPresent(&cfg.LinkedIn.ClientID, "LINKEDIN_CLIENT_ID")
	setIfPresent(&cfg.LinkedIn.ClientSecret, "LINKEDIN_CLIENT_SECRET")
	setIfPresent(&cfg.LinkedIn.RedirectURL, "LINKEDIN_REDIRECT_URI")

	setIfPresent(&cfg.Twitter.ConsumerKey, "TWITTER_API_KEY")
	setIfPresent(&cfg.Twitter.ConsumerSecret, "TWITTER_API_SECRET")
	setIfPresent(&cfg.Twitter.CallbackURL, "TWITTER_CALLBACK_URL")

	setIfPresent(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setIfPresent(&cfg.Gemini.TextModel, "GEMINI_MODEL")
	setIfPresent(&cfg.Gemini.ImageModel, "GEMINI_IMAGE_MODEL")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
