// Package sqlstore implements the store gateway on SQL databases.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/student-records/apiserver/internal/store"
)

// Schema maps a record type onto a table. The identifier lives in the id
// column; Columns lists every other column in the order Values and Scan use.
type Schema[T any] struct {
	Table   string
	Columns []string
	Values  func(doc T) []any
	Scan    func(scan func(dest ...any) error) (T, error)
}

// Collection is a store.Collection backed by a SQL table.
type Collection[T any] struct {
	db      *sql.DB
	dialect Dialect
	schema  Schema[T]
}

func NewCollection[T any](db *sql.DB, dialect Dialect, schema Schema[T]) *Collection[T] {
	return &Collection[T]{db: db, dialect: dialect, schema: schema}
}

func (c *Collection[T]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	var zero T
	where, args, err := c.where(filter, nil)
	if err != nil {
		return zero, err
	}
	query := c.selectQuery() + where + " LIMIT 1"

	doc, err := c.schema.Scan(c.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, store.ErrNotFound
		}
		return zero, err
	}
	return doc, nil
}

func (c *Collection[T]) FindMany(ctx context.Context, filter store.Filter) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		where, args, err := c.where(filter, nil)
		if err != nil {
			yield(zero, err)
			return
		}

		rows, err := c.db.QueryContext(ctx, c.selectQuery()+where+" ORDER BY id", args...)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			doc, err := c.schema.Scan(rows.Scan)
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc T) (string, error) {
	id := store.NewID()
	columns := append([]string{"id"}, c.schema.Columns...)
	args := append([]any{id}, c.schema.Values(doc)...)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = c.dialect.Placeholder(i + 1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		c.schema.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return "", c.translate(err)
	}
	return id, nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, filter store.Filter, set store.Fields) (bool, error) {
	if len(set) == 0 {
		_, err := c.FindOne(ctx, filter)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	assignments := make([]string, 0, len(set))
	args := make([]any, 0, len(set))
	for _, field := range set {
		if !c.hasColumn(field.Name) {
			return false, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, c.schema.Table, field.Name)
		}
		args = append(args, field.Value)
		assignments = append(assignments, field.Name+" = "+c.dialect.Placeholder(len(args)))
	}

	// Restrict the update to one row through the primary key, since neither
	// dialect supports UPDATE ... LIMIT portably.
	where, args, err := c.where(filter, args)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = (SELECT id FROM %s%s LIMIT 1)",
		c.schema.Table,
		strings.Join(assignments, ", "),
		c.schema.Table,
		where,
	)

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, c.translate(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, filter store.Filter) (bool, error) {
	where, args, err := c.where(filter, nil)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE id = (SELECT id FROM %s%s LIMIT 1)",
		c.schema.Table,
		c.schema.Table,
		where,
	)

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (c *Collection[T]) selectQuery() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(c.schema.Columns, ", "), c.schema.Table)
}

// where renders filter as a WHERE clause, numbering placeholders after the
// arguments already in args.
func (c *Collection[T]) where(filter store.Filter, args []any) (string, []any, error) {
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}

	var clauses []string
	add := func(expr string, value any) {
		args = append(args, value)
		clauses = append(clauses, expr+" "+c.dialect.Placeholder(len(args)))
	}

	if filter.ID != "" {
		add("id =", filter.ID)
	}
	if filter.ExcludeID != "" {
		add("id <>", filter.ExcludeID)
	}
	for _, cond := range filter.Conditions {
		if !c.hasColumn(cond.Field) {
			return "", nil, fmt.Errorf("%w: %s.%s", store.ErrUnknownField, c.schema.Table, cond.Field)
		}
		add(cond.Field+" =", cond.Value)
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (c *Collection[T]) hasColumn(name string) bool {
	return slices.Contains(c.schema.Columns, name)
}

func (c *Collection[T]) translate(err error) error {
	column, ok := c.dialect.UniqueViolation(c.schema.Table, err)
	if !ok {
		return err
	}
	return &store.DuplicateKeyError{Collection: c.schema.Table, Field: column, Err: err}
}
