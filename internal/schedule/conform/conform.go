// SPDX-License-Identifier: Apache-2.0

// Package conform checks extraction results against the CUE schema of the
// published result format.
package conform

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/academyplan/academyplan-mcp/internal/schedule"
)

//go:embed result.cue
var resultSchema string

// Checker validates results against #Result. A cue.Context is not safe for
// concurrent use, so checks are serialized.
type Checker struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

func New() (*Checker, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(resultSchema, cue.Filename("result.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling result schema: %w", err)
	}
	schema := v.LookupPath(cue.ParsePath("#Result"))
	if !schema.Exists() {
		return nil, fmt.Errorf("result schema has no #Result definition")
	}
	return &Checker{ctx: ctx, schema: schema}, nil
}

// Check reports every schema violation in r as one error.
func (c *Checker) Check(r *schedule.Result) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.ctx.Encode(r)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := c.schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("result does not conform to schema: %s", errors.Details(err, nil))
	}
	return nil
}
