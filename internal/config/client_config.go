package config

import "time"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetWatchInterval() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}

// GetRefreshTimeout bounds the bare refresh-token exchange. Kept shorter than
// the request timeout so a hung refresh cannot double the caller's wait.
func (Client) GetRefreshTimeout() time.Duration {
	return 15 * time.Second
}

func (Client) GetWatchInterval() time.Duration {
	return 5 * time.Second
}
