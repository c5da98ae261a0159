package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/IliaW/robots-api/config"
	"github.com/bradfitz/gomemcache/memcache"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.0 --name CachedClient
type CachedClient interface {
	GetRobotsTxt(domain, revision string) ([]byte, bool)
	SaveRobotsTxt(domain, revision string, body []byte)
	DeleteRobotsTxt(domain, revision string)
	Close()
}

type MemcachedClient struct {
	client *memcache.Client
	cfg    *config.CacheConfig
}

func NewMemcachedClient(cacheConfig *config.CacheConfig) *MemcachedClient {
	slog.Info("connecting to memcached...")
	ss := new(memcache.ServerList)
	err := ss.SetServers(cacheConfig.Servers...)
	if err != nil {
		slog.Error("failed to set memcached servers.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	c := &MemcachedClient{
		client: memcache.NewFromSelector(ss),
		cfg:    cacheConfig,
	}
	slog.Info("pinging the memcached.")
	err = c.client.Ping()
	if err != nil {
		slog.Error("connection to the memcached is failed.", slog.String("err", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to memcached!")

	return c
}

func (mc *MemcachedClient) GetRobotsTxt(domain, revision string) ([]byte, bool) {
	key := Key(domain, revision)
	item, err := mc.client.Get(key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			slog.Debug("cache not found.", slog.String("key", key), slog.String("domain", domain))
		} else {
			slog.Error("failed to check if cached.", slog.String("key", key), slog.String("domain", domain),
				slog.String("err", err.Error()))
		}
		return nil, false
	}
	slog.Debug("cache found.", slog.String("key", key))

	return item.Value, true
}

func (mc *MemcachedClient) SaveRobotsTxt(domain, revision string, body []byte) {
	key := Key(domain, revision)
	item := &memcache.Item{
		Key:        key,
		Value:      body,
		Expiration: int32(mc.cfg.TtlForRobotsTxt.Seconds()),
	}
	if err := mc.client.Set(item); err != nil {
		slog.Error("failed to save robots.txt to cache.", slog.String("key", key),
			slog.String("err", err.Error()))
		return
	}
	slog.Debug("robots.txt saved to cache.", slog.String("key", key))
}

func (mc *MemcachedClient) DeleteRobotsTxt(domain, revision string) {
	key := Key(domain, revision)
	err := mc.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		slog.Error("failed to delete robots.txt from cache.", slog.String("key", key),
			slog.String("err", err.Error()))
		return
	}
	slog.Debug("robots.txt removed from cache.", slog.String("key", key))
}

func (mc *MemcachedClient) Close() {
	slog.Info("closing memcached connection.")
	err := mc.client.Close()
	if err != nil {
		slog.Error("failed to close memcached connection.", slog.String("err", err.Error()))
	}
}

// Key builds the cache key of a rendered robots.txt. The revision changes whenever the robots
// settings change, so stale bodies are never read after a reload.
func Key(domain, revision string) string {
	return fmt.Sprintf("%s-robots-txt-%s", hash(domain), revision)
}

func hash(value string) string {
	h := sha256.New()
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}
