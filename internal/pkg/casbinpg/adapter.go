// Package casbinpg persists Casbin policies in PostgreSQL through pgx.
package casbinpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrRuleTooLong indicates a rule with more values than the table holds.
	ErrRuleTooLong = errors.New("casbinpg: rule exceeds field count")
	// ErrEmptyPtype indicates a filtered delete without a policy type.
	ErrEmptyPtype = errors.New("casbinpg: ptype is empty")
)

// Adapter loads and saves Casbin policies from a rule table.
type Adapter struct {
	store *store
}

var (
	_ persist.Adapter             = (*Adapter)(nil)
	_ persist.ContextAdapter      = (*Adapter)(nil)
	_ persist.BatchAdapter        = (*Adapter)(nil)
	_ persist.ContextBatchAdapter = (*Adapter)(nil)
)

// Option configures the adapter.
type Option func(*Adapter)

// WithTableName overrides the default rule table name.
func WithTableName(tableName string) Option {
	return func(a *Adapter) {
		a.store.tableName = lo.SnakeCase(tableName)
	}
}

// NewAdapter pings the database with backoff and ensures the rule table
// exists before returning.
func NewAdapter(ctx context.Context, db Querier, opts ...Option) (*Adapter, error) {
	adapter := &Adapter{store: newStore(db)}
	for _, opt := range opts {
		opt(adapter)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(db.Ping(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("casbinpg: ping: %w", err)
	}

	if err := adapter.store.ensureTable(ctx); err != nil {
		return nil, err
	}
	return adapter, nil
}

// LoadPolicyCtx loads every rule into the model.
func (a *Adapter) LoadPolicyCtx(ctx context.Context, m model.Model) error {
	lines, err := a.store.selectAll(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}

// SavePolicyCtx replaces the stored rules with the model's rules.
func (a *Adapter) SavePolicyCtx(ctx context.Context, m model.Model) error {
	var rules [][]string
	for _, section := range []string{"p", "g"} {
		for ptype, ast := range m[section] {
			for _, rule := range ast.Policy {
				rules = append(rules, prependPtype(ptype, rule))
			}
		}
	}
	return a.store.replaceAll(ctx, rules)
}

// AddPolicyCtx inserts one rule.
func (a *Adapter) AddPolicyCtx(ctx context.Context, _, ptype string, rule []string) error {
	return a.store.insert(ctx, ptype, rule)
}

// AddPoliciesCtx inserts rules in one batch.
func (a *Adapter) AddPoliciesCtx(ctx context.Context, _, ptype string, rules [][]string) error {
	return a.store.batchInsert(ctx, ptype, rules)
}

// RemovePolicyCtx deletes one rule.
func (a *Adapter) RemovePolicyCtx(ctx context.Context, _, ptype string, rule []string) error {
	return a.store.delete(ctx, ptype, rule)
}

// RemovePoliciesCtx deletes rules in one batch.
func (a *Adapter) RemovePoliciesCtx(ctx context.Context, _, ptype string, rules [][]string) error {
	return a.store.batchDelete(ctx, ptype, rules)
}

// RemoveFilteredPolicyCtx deletes rules whose values match the filter
// starting at fieldIndex. Empty filter values match anything.
func (a *Adapter) RemoveFilteredPolicyCtx(ctx context.Context, _, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.store.deleteWhere(ctx, ptype, fieldIndex, fieldValues)
}

// LoadPolicy loads every rule into the model.
func (a *Adapter) LoadPolicy(m model.Model) error {
	return a.LoadPolicyCtx(context.Background(), m)
}

// SavePolicy replaces the stored rules with the model's rules.
func (a *Adapter) SavePolicy(m model.Model) error {
	return a.SavePolicyCtx(context.Background(), m)
}

// AddPolicy inserts one rule.
func (a *Adapter) AddPolicy(sec, ptype string, rule []string) error {
	return a.AddPolicyCtx(context.Background(), sec, ptype, rule)
}

// AddPolicies inserts rules in one batch.
func (a *Adapter) AddPolicies(sec, ptype string, rules [][]string) error {
	return a.AddPoliciesCtx(context.Background(), sec, ptype, rules)
}

// RemovePolicy deletes one rule.
func (a *Adapter) RemovePolicy(sec, ptype string, rule []string) error {
	return a.RemovePolicyCtx(context.Background(), sec, ptype, rule)
}

// RemovePolicies deletes rules in one batch.
func (a *Adapter) RemovePolicies(sec, ptype string, rules [][]string) error {
	return a.RemovePoliciesCtx(context.Background(), sec, ptype, rules)
}

// RemoveFilteredPolicy deletes rules matching the filter.
func (a *Adapter) RemoveFilteredPolicy(sec, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.RemoveFilteredPolicyCtx(context.Background(), sec, ptype, fieldIndex, fieldValues...)
}

func prependPtype(ptype string, rule []string) []string {
	out := make([]string, 1+len(rule))
	out[0] = ptype
	copy(out[1:], rule)
	return out
}
