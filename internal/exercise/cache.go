package exercise

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/claude/liftscribe/internal/models"
)

// identityCache is a bounded slug-to-identity cache owned by the resolver.
// A hit only short-circuits the store lookup; creation always goes through
// the store's slug constraint.
type identityCache struct {
	c *lru.Cache[string, *models.ExerciseIdentity]
}

func newIdentityCache(size int) (*identityCache, error) {
	c, err := lru.New[string, *models.ExerciseIdentity](size)
	if err != nil {
		return nil, err
	}
	return &identityCache{c: c}, nil
}

func (ic *identityCache) get(slug string) (*models.ExerciseIdentity, bool) {
	return ic.c.Get(slug)
}

func (ic *identityCache) put(id *models.ExerciseIdentity) {
	if id != nil && id.Slug != "" {
		ic.c.Add(id.Slug, id)
	}
}

// invalidate removes one slug, e.g. after an identity is edited or merged
// by a review workflow.
func (ic *identityCache) invalidate(slug string) {
	ic.c.Remove(slug)
}

func (ic *identityCache) purge() {
	ic.c.Purge()
}
