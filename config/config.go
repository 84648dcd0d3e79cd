// Package config provides environment-backed configuration for the ragtime
// server. A .env file is honored when present.
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"ragtime/util/random"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func init() {
	_ = godotenv.Load()
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("RAGTIME_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("RAGTIME_DEBUG") == "true"
}

func GetListen() string {
	return os.Getenv("RAGTIME_LISTEN")
}

func GetPort() int {
	return envInt("RAGTIME_PORT", 8080)
}

func GetBasePath() string {
	basePath := os.Getenv("RAGTIME_BASE_PATH")
	if basePath == "" {
		return "/"
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

var secret string

// GetSecret returns the key used for session cookies and signed tokens. When
// RAGTIME_SECRET is unset a random per-process secret is generated, which
// invalidates sessions and tokens across restarts.
func GetSecret() string {
	if secret == "" {
		secret = os.Getenv("RAGTIME_SECRET")
	}
	if secret == "" {
		secret = random.Seq(32)
	}
	return secret
}

// GetAdminEmail returns the email address that is granted the Administrator
// role at registration. Empty disables the special case.
func GetAdminEmail() string {
	return os.Getenv("RAGTIME_ADMIN")
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("RAGTIME_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetCompsPerPage() int {
	return envInt("RAGTIME_COMPS_PER_PAGE", 20)
}

func GetCommentsPerPage() int {
	return envInt("RAGTIME_COMMENTS_PER_PAGE", 20)
}

func GetFollowersPerPage() int {
	return envInt("RAGTIME_FOLLOWERS_PER_PAGE", 20)
}

func GetSessionMaxAge() int {
	return envInt("RAGTIME_SESSION_MAX_AGE", 30*24*60*60)
}

// GetRedisAddr returns the redis address for the session store. Empty means
// the cookie store is used instead.
func GetRedisAddr() string {
	return os.Getenv("RAGTIME_REDIS_ADDR")
}

func GetRedisPassword() string {
	return os.Getenv("RAGTIME_REDIS_PASSWORD")
}

// Mail transport settings. Mail sending is disabled when the server is empty.
func GetMailServer() string {
	return os.Getenv("RAGTIME_MAIL_SERVER")
}

func GetMailPort() int {
	return envInt("RAGTIME_MAIL_PORT", 587)
}

func GetMailUsername() string {
	return os.Getenv("RAGTIME_MAIL_USERNAME")
}

func GetMailPassword() string {
	return os.Getenv("RAGTIME_MAIL_PASSWORD")
}

func GetMailSender() string {
	sender := os.Getenv("RAGTIME_MAIL_SENDER")
	if sender == "" {
		sender = GetAdminEmail()
	}
	return sender
}

func GetMailSubjectPrefix() string {
	return "Ragtime - "
}

// GetExternalURL returns the public base URL used when building absolute
// links (mention links, API resource URLs in mail).
func GetExternalURL() string {
	u := os.Getenv("RAGTIME_EXTERNAL_URL")
	if u == "" {
		u = "http://localhost:8080"
	}
	return strings.TrimSuffix(u, "/")
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
