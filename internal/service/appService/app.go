// Package appService reports backend reachability and record counts.
package appService

import (
	"context"
	"fmt"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// PingFunc adapts a plain function, such as a redis ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type AppService struct {
	redis Pinger
	db    Pinger
	users Counter
	files Counter
}

func New(redis, db Pinger, users, files Counter) *AppService {
	return &AppService{redis: redis, db: db, users: users, files: files}
}

func (s *AppService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.redis != nil && s.redis.Ping(ctx) == nil,
		DB:    s.db != nil && s.db.Ping(ctx) == nil,
	}
}

func (s *AppService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	files, err := s.files.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &Stats{Users: users, Files: files}, nil
}
