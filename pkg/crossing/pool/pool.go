package pool

import (
	"fmt"

	"github.com/bridgeplan/crossing/pkg/crossing/model"
)

// UnknownVariable is returned by Reverse for an id the Pool never issued.
type UnknownVariable int

func (e UnknownVariable) Error() string {
	return fmt.Sprintf("unknown variable %d", int(e))
}

// Pool performs translation between the propositions of a model and the
// positive integer variables that appear in the CNF. Ids are dense, start
// at 1 and are handed out in first-request order.
//
// A Pool belongs to a single encoding and is not safe for concurrent use.
type Pool struct {
	ids  map[model.Key]int
	keys []model.Key
	aux  int
}

func New() *Pool {
	return &Pool{ids: make(map[model.Key]int)}
}

// ID returns the variable of k, allocating it on first use.
func (p *Pool) ID(k model.Key) int {
	if id, ok := p.ids[k]; ok {
		return id
	}
	p.keys = append(p.keys, k)
	id := len(p.keys)
	p.ids[k] = id
	return id
}

// Lit returns the signed variable of m.
func (p *Pool) Lit(m model.Literal) int {
	id := p.ID(m.Key)
	if m.Negated {
		return -id
	}
	return id
}

// Fresh allocates a new auxiliary variable.
func (p *Pool) Fresh() int {
	p.aux++
	return p.ID(model.Auxiliary(p.aux))
}

// Lookup returns the variable of k without allocating.
func (p *Pool) Lookup(k model.Key) (int, bool) {
	id, ok := p.ids[k]
	return id, ok
}

// Reverse returns the Key that id was issued for.
func (p *Pool) Reverse(id int) (model.Key, error) {
	if id < 1 || id > len(p.keys) {
		return model.Key{}, UnknownVariable(id)
	}
	return p.keys[id-1], nil
}

// Len returns the number of variables issued so far, which is also the
// largest id.
func (p *Pool) Len() int {
	return len(p.keys)
}

// Keys returns the issued keys in id order.
func (p *Pool) Keys() []model.Key {
	return append([]model.Key(nil), p.keys...)
}
