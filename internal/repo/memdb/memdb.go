// Package memdb implements the repository interfaces on in-memory maps.
// It backs the server when no postgres connection is configured and the
// package tests.
package memdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/repo"
)

type Store struct {
	mu sync.RWMutex

	users      map[uuid.UUID]entity.User
	businesses map[uuid.UUID]entity.BusinessProfile
	jobs       map[uuid.UUID]entity.Job
	bids       map[uuid.UUID]entity.Bid
	messages   map[uuid.UUID]entity.Message
	events     []event.Event

	// insertion order, newest last
	jobOrder      []uuid.UUID
	bidOrder      []uuid.UUID
	messageOrder  []uuid.UUID
	businessOrder []uuid.UUID
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]entity.User),
		businesses: make(map[uuid.UUID]entity.BusinessProfile),
		jobs:       make(map[uuid.UUID]entity.Job),
		bids:       make(map[uuid.UUID]entity.Bid),
		messages:   make(map[uuid.UUID]entity.Message),
	}
}

func NewRepositories() *repo.Repositories {
	s := NewStore()

	return &repo.Repositories{
		Diagnostics: &DiagnosticsRepo{s},
		User:        &UserRepo{s},
		Business:    &BusinessRepo{s},
		Job:         &JobRepo{s},
		Bid:         &BidRepo{s},
		Message:     &MessageRepo{s},
		Event:       &EventRepo{s},
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

type DiagnosticsRepo struct {
	*Store
}

func (r *DiagnosticsRepo) Ping() error {
	return nil
}
