// Package cache provides the optional redis-backed session store for the
// ragtime web server. When no redis address is configured the server falls
// back to cookie sessions.
package cache

import (
	"context"
	"fmt"

	"ragtime/logger"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// InitRedis connects to an external redis server and verifies the
// connection.
func InitRedis(addr, password string) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Info("connected to redis at", addr)
	return nil
}

// GetClient returns the redis client, nil when redis is not configured.
func GetClient() *redis.Client {
	return client
}

// Close closes the redis connection.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
