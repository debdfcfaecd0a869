// Package config sources SDK settings from the environment. Getters return
// sentinel values for unset or unparsable variables; callers fall back to
// their own defaults.
package config

import "time"

type Config interface {
	CredentialsConfig
	TransportConfig
}

// CredentialsConfig exposes the OAuth2 client registration.
type CredentialsConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetBaseURL() string
	GetRedirectURI() string
}

// TransportConfig exposes the resilience policy overrides.
type TransportConfig interface {
	GetTimeout() time.Duration
	GetMaxRetries() int
	GetBackoffFactor() float64
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
