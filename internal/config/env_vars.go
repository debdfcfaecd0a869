package config

import (
	"os"
	"strconv"
	"time"
)

const (
	clientIDVar      = "SELLERLEGEND_CLIENT_ID"
	clientSecretVar  = "SELLERLEGEND_CLIENT_SECRET"
	baseURLVar       = "SELLERLEGEND_BASE_URL"
	redirectURIVar   = "SELLERLEGEND_REDIRECT_URI"
	timeoutVar       = "SELLERLEGEND_TIMEOUT"
	maxRetriesVar    = "SELLERLEGEND_MAX_RETRIES"
	backoffFactorVar = "SELLERLEGEND_BACKOFF_FACTOR"
)

const defaultBaseURL = "https://app.sellerlegend.com"

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, defaultBaseURL)
}

func (EnvVars) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "")
}

// GetTimeout reads the per-attempt timeout in seconds. Zero means unset.
func (EnvVars) GetTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(timeoutVar, ""))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// GetMaxRetries reads the retry limit. Returns -1 when unset, since an
// explicit "0" is meaningful and disables retrying.
func (EnvVars) GetMaxRetries() int {
	retries, err := strconv.Atoi(GetEnv(maxRetriesVar, ""))
	if err != nil || retries < 0 {
		return -1
	}
	return retries
}

// GetBackoffFactor reads the backoff scale factor. Zero means unset.
func (EnvVars) GetBackoffFactor() float64 {
	factor, err := strconv.ParseFloat(GetEnv(backoffFactorVar, ""), 64)
	if err != nil || factor <= 0 {
		return 0
	}
	return factor
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
