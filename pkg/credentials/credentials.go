// Package credentials caches viewer credentials for the life of the process.
package credentials

import (
	"context"
	"sync"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

var log = logger.New("ns=credentials")

// Cache resolves credentials from a secret source once and keeps the first
// valid value. Credentials do not rotate within a process so staleness is
// acceptable.
type Cache struct {
	Source   structs.Secrets
	SecretID string

	creds *structs.Credentials
	lock  sync.Mutex
}

func NewCache(source structs.Secrets, secretID string) *Cache {
	return &Cache{Source: source, SecretID: secretID}
}

// Get returns the cached credentials, fetching them on first use. Blank
// username or password fails with structs.ErrBlankCredentials and nothing is
// cached.
func (c *Cache) Get(ctx context.Context) (*structs.Credentials, error) {
	if cr := c.cached(); cr != nil {
		return cr, nil
	}

	log := log.At("get").Namespace("secret=%q", c.SecretID).Start()

	if c.Source == nil {
		return nil, log.Error(errors.New("no secret source configured"))
	}

	cr, err := c.Source.SecretGet(ctx, c.SecretID)
	if err != nil {
		return nil, log.Error(errors.Wrap(err, "resolve credentials"))
	}

	if err := cr.Validate(); err != nil {
		return nil, log.Error(err)
	}

	c.Set(cr)

	log.Success()

	return c.cached(), nil
}

// Set stores cr unless a value is already cached, reporting whether it was
// stored.
func (c *Cache) Set(cr *structs.Credentials) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.creds != nil {
		return false
	}

	c.creds = cr

	return true
}

func (c *Cache) cached() *structs.Credentials {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.creds
}
