package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/valenvalita/project-manager/config"
)

// DSN returns the connection string for cfg, preferring an explicit DB_DSN.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(sslmode)),
	}
	return u.String()
}
