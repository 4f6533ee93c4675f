package state

import (
	"github.com/taskboard/client/internal/domain/entities"
)

// Effect is a post-transition side effect on persisted storage. Reduce only
// describes effects; the store executes them.
type Effect interface {
	isEffect()
}

// PersistUser stores the cached identity under the "user" key.
type PersistUser struct {
	User entities.User
}

// PersistToken stores the bearer token under the "token" key.
type PersistToken struct {
	Token string
}

// ClearSession removes the token and the cached identity as a unit.
type ClearSession struct{}

func (PersistUser) isEffect()  {}
func (PersistToken) isEffect() {}
func (ClearSession) isEffect() {}
