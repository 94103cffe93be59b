package casbinpg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

const (
	defaultTableName = "casbin_rules"
	ruleFieldCount   = 6
)

// Querier is the subset of pgxpool.Pool the adapter needs.
type Querier interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type store struct {
	db        Querier
	tableName string
}

func newStore(db Querier) *store {
	return &store{db: db, tableName: defaultTableName}
}

func (s *store) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`create table if not exists %[1]s (
		id bigserial primary key,
		ptype text not null,
		%[2]s,
		unique (ptype, %[3]s)
	)`,
		s.tableName,
		strings.Join(lo.Times(ruleFieldCount, func(i int) string {
			return "v" + strconv.Itoa(i) + " text not null default ''"
		}), ",\n\t\t"),
		columnList(),
	)

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("casbinpg: ensure table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *store) insertSQL() string {
	return fmt.Sprintf(
		"insert into %[1]s (ptype, %[2]s) values ($1, %[3]s) on conflict (ptype, %[2]s) do nothing",
		s.tableName, columnList(), placeholderList(2),
	)
}

func (s *store) deleteSQL() string {
	conds := lo.Times(ruleFieldCount, func(i int) string {
		return "v" + strconv.Itoa(i) + " = $" + strconv.Itoa(i+2)
	})
	return fmt.Sprintf("delete from %s where ptype = $1 and %s", s.tableName, strings.Join(conds, " and "))
}

func (s *store) insert(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.insertSQL(), args...); err != nil {
		return fmt.Errorf("casbinpg: insert rule: %w", err)
	}
	return nil
}

func (s *store) delete(ctx context.Context, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, s.deleteSQL(), args...); err != nil {
		return fmt.Errorf("casbinpg: delete rule: %w", err)
	}
	return nil
}

func (s *store) deleteWhere(ctx context.Context, ptype string, startIdx int, values []string) error {
	if ptype == "" {
		return ErrEmptyPtype
	}
	if len(values) > ruleFieldCount-startIdx {
		return fmt.Errorf("%w: %d values from index %d", ErrRuleTooLong, len(values), startIdx)
	}

	conds := []string{"ptype = $1"}
	args := []any{ptype}
	for i, value := range values {
		if value == "" {
			continue
		}
		args = append(args, value)
		conds = append(conds, "v"+strconv.Itoa(i+startIdx)+" = $"+strconv.Itoa(len(args)))
	}

	query := fmt.Sprintf("delete from %s where %s", s.tableName, strings.Join(conds, " and "))
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("casbinpg: delete filtered rules: %w", err)
	}
	return nil
}

func (s *store) selectAll(ctx context.Context) ([][]string, error) {
	query := fmt.Sprintf("select ptype, %s from %s order by id", columnList(), s.tableName)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("casbinpg: select rules: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		row := make([]sql.NullString, ruleFieldCount+1)
		scanArgs := make([]any, len(row))
		for i := range row {
			scanArgs[i] = &row[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("casbinpg: scan rule: %w", err)
		}

		line := make([]string, len(row))
		for i := range row {
			line[i] = row[i].String
		}
		result = append(result, trimTrailingEmpty(line))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("casbinpg: iterate rules: %w", err)
	}
	return result, nil
}

// replaceAll truncates the table and reinserts all rules in one transaction.
// Each rule carries its ptype as the first element.
func (s *store) replaceAll(ctx context.Context, rules [][]string) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("casbinpg: begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, fmt.Sprintf("truncate table %s restart identity", s.tableName)); err != nil {
		return fmt.Errorf("casbinpg: truncate: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		if len(rule) == 0 {
			continue
		}
		args, argErr := ruleArgs(rule[0], rule[1:])
		if argErr != nil {
			return argErr
		}
		batch.Queue(s.insertSQL(), args...)
	}
	if batch.Len() > 0 {
		if err = drainBatch(tx.SendBatch(ctx, batch), batch.Len()); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("casbinpg: commit: %w", err)
	}
	return nil
}

func (s *store) batchInsert(ctx context.Context, ptype string, rules [][]string) error {
	return s.batchExec(ctx, s.insertSQL(), ptype, rules)
}

func (s *store) batchDelete(ctx context.Context, ptype string, rules [][]string) error {
	return s.batchExec(ctx, s.deleteSQL(), ptype, rules)
}

func (s *store) batchExec(ctx context.Context, query, ptype string, rules [][]string) error {
	if len(rules) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		args, err := ruleArgs(ptype, rule)
		if err != nil {
			return err
		}
		batch.Queue(query, args...)
	}
	return drainBatch(s.db.SendBatch(ctx, batch), batch.Len())
}

func drainBatch(br pgx.BatchResults, n int) error {
	for range n {
		if _, err := br.Exec(); err != nil {
			closeErr := br.Close()
			if closeErr != nil {
				return fmt.Errorf("casbinpg: batch exec: %w (close: %v)", err, closeErr)
			}
			return fmt.Errorf("casbinpg: batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("casbinpg: batch close: %w", err)
	}
	return nil
}

func ruleArgs(ptype string, rule []string) ([]any, error) {
	if len(rule) > ruleFieldCount {
		return nil, fmt.Errorf("%w: %d values", ErrRuleTooLong, len(rule))
	}

	args := make([]any, ruleFieldCount+1)
	args[0] = ptype
	for i := range ruleFieldCount {
		if i < len(rule) {
			args[i+1] = rule[i]
		} else {
			args[i+1] = ""
		}
	}
	return args, nil
}

func columnList() string {
	return strings.Join(lo.Times(ruleFieldCount, func(i int) string {
		return "v" + strconv.Itoa(i)
	}), ", ")
}

func placeholderList(start int) string {
	return strings.Join(lo.Times(ruleFieldCount, func(i int) string {
		return "$" + strconv.Itoa(i+start)
	}), ", ")
}

func trimTrailingEmpty(line []string) []string {
	last := len(line) - 1
	for last >= 0 && line[last] == "" {
		last--
	}
	return line[:last+1]
}
