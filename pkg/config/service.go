package config

import "github.com/bookcross/bookcross/pkg/version"

// PublicConfig is the subset of the config that clients are allowed to see.
type PublicConfig struct {
	Locale                    string `json:"locale"`
	MediaURL                  string `json:"media_url"`
	ReservationTimeoutMinutes int    `json:"reservation_timeout_minutes"`
	Version                   string `json:"version"`
}

type Service struct {
	config *Config
}

func NewService(cfg *Config) *Service {
	return &Service{config: cfg}
}

func (svc *Service) RetrievePublicConfig() *PublicConfig {
	return &PublicConfig{
		Locale:                    svc.config.Locale,
		MediaURL:                  svc.config.MediaURL,
		ReservationTimeoutMinutes: int(svc.config.ReservationTimeout.Minutes()),
		Version:                   version.Version,
	}
}
