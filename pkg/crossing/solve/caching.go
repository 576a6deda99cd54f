package solve

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/bridgeplan/crossing/pkg/crossing/cache"
	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

type cachingSolver struct {
	inner     Solver
	store     cache.Store
	namespace string
}

// NewCaching memoizes the decided results of inner in store, keyed by a
// hash of the CNF. Indeterminate results are never stored.
func NewCaching(inner Solver, store cache.Store, namespace string) Solver {
	return &cachingSolver{inner: inner, store: store, namespace: namespace}
}

// Key returns the store key for f.
func Key(namespace string, f cnf.CNF) (string, error) {
	h, err := hashstructure.Hash(f, nil)
	if err != nil {
		return "", errors.Wrap(err, "hashing cnf")
	}
	return fmt.Sprintf("%s/%016x", namespace, h), nil
}

func (s *cachingSolver) Solve(ctx context.Context, f cnf.CNF) (Result, error) {
	key, err := Key(s.namespace, f)
	if err != nil {
		return Result{}, err
	}

	raw, ok, err := s.store.Get(key)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading cached result")
	}
	if ok {
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			return Result{}, errors.Wrapf(err, "decoding cached result %s", key)
		}
		return r, nil
	}

	r, err := s.inner.Solve(ctx, f)
	if err != nil || r.Status == Indeterminate {
		return r, err
	}
	raw, err = json.Marshal(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "encoding result")
	}
	if err := s.store.Put(key, raw); err != nil {
		return Result{}, errors.Wrap(err, "caching result")
	}
	return r, nil
}
