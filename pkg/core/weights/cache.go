// Package weights is the process-wide active-WeightVector cache: a
// read-mostly map replaced wholesale on every update so readers take an
// atomic snapshot and never observe a torn write. Generalised from the
// single-*NetParams atomic-pointer-swap idiom in
// pkg/core/ensemble/net.go to a whole resolution map.
package weights

import (
	"sync/atomic"

	"fundamental_engine/pkg/models"
)

// key identifies one resolvable weight scope.
type key struct {
	kind models.OwnerKind
	id   string
}

// snapshot is the immutable map swapped in on every Update.
type snapshot map[key]*models.WeightVector

// Cache resolves the active WeightVector for a company with
// company-override > industry-active > global-active > default
// precedence, backed by a single atomic pointer so concurrent Resolve
// calls never block each other or a concurrent Update.
type Cache struct {
	current atomic.Pointer[snapshot]
	def     models.WeightVector
}

// NewCache seeds the cache with the compiled-in default weight vector
// (used when nothing has ever been trained for a scope).
func NewCache(def models.WeightVector) *Cache {
	c := &Cache{def: def}
	empty := snapshot{}
	c.current.Store(&empty)
	return c
}

// Update installs a new snapshot wholesale; copy-on-write means any
// Resolve in flight continues to see the snapshot it started with.
func (c *Cache) Update(vectors map[models.OwnerKind]map[string]*models.WeightVector) {
	next := snapshot{}
	for kind, byOwner := range vectors {
		for ownerID, v := range byOwner {
			next[key{kind: kind, id: ownerID}] = v
		}
	}
	c.current.Store(&next)
}

// Set replaces a single owner's entry by copying the current snapshot
// plus the one change, so concurrent readers never see a partially
// updated map (the copy is cheap: a handful of owners per deploy).
func (c *Cache) Set(kind models.OwnerKind, ownerID string, v *models.WeightVector) {
	old := *c.current.Load()
	next := make(snapshot, len(old)+1)
	for k, val := range old {
		next[k] = val
	}
	next[key{kind: kind, id: ownerID}] = v
	c.current.Store(&next)
}

// Resolve applies company-override > industry-active > global-active >
// default precedence for one company in a given industry.
func (c *Cache) Resolve(companyID, industry string) models.WeightVector {
	if v, ok := c.ResolveTrained(companyID, industry); ok {
		return *v
	}
	return c.def
}

// ResolveTrained applies the same company-override > industry-active >
// global-active precedence as Resolve, but reports false instead of
// falling back to the default vector, so a caller can tell "nothing has
// been trained for this scope yet" apart from "the default vector
// applies" and route the former through EnsembleNet instead.
func (c *Cache) ResolveTrained(companyID, industry string) (*models.WeightVector, bool) {
	snap := *c.current.Load()
	if v, ok := snap[key{kind: models.OwnerCompanyOverride, id: companyID}]; ok && v != nil {
		return v, true
	}
	if industry != "" {
		if v, ok := snap[key{kind: models.OwnerIndustry, id: industry}]; ok && v != nil {
			return v, true
		}
	}
	if v, ok := snap[key{kind: models.OwnerGlobal, id: "global"}]; ok && v != nil {
		return v, true
	}
	return nil, false
}
