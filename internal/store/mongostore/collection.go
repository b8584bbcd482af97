// Package mongostore implements the store gateway on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/student-records/apiserver/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var dupIndexPattern = regexp.MustCompile(`index: (\S+) dup key`)

// Collection is a store.Collection backed by a MongoDB collection.
type Collection[T any] struct {
	coll *mongo.Collection
	name string
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name), name: name}
}

func (c *Collection[T]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	var doc T
	query, err := toQuery(filter)
	if err != nil {
		return doc, err
	}
	if err := c.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, store.ErrNotFound
		}
		return doc, err
	}
	return doc, nil
}

func (c *Collection[T]) FindMany(ctx context.Context, filter store.Filter) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		query, err := toQuery(filter)
		if err != nil {
			yield(zero, err)
			return
		}
		cursor, err := c.coll.Find(ctx, query)
		if err != nil {
			yield(zero, err)
			return
		}
		defer func() {
			_ = cursor.Close(ctx)
		}()

		for cursor.Next(ctx) {
			var doc T
			if err := cursor.Decode(&doc); err != nil {
				yield(zero, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(zero, err)
		}
	}
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc T) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}

	id := primitive.NewObjectID()
	record := make(bson.D, 0, len(fields)+1)
	record = append(record, bson.E{Key: "_id", Value: id})
	for _, field := range fields {
		if field.Key != "_id" {
			record = append(record, field)
		}
	}

	if _, err := c.coll.InsertOne(ctx, record); err != nil {
		return "", c.translate(err)
	}
	return id.Hex(), nil
}

func (c *Collection[T]) UpdateOne(ctx context.Context, filter store.Filter, set store.Fields) (bool, error) {
	query, err := toQuery(filter)
	if err != nil {
		return false, err
	}
	if len(set) == 0 {
		count, err := c.coll.CountDocuments(ctx, query)
		return count > 0, err
	}

	update := make(bson.D, 0, len(set))
	for _, field := range set {
		if field.Name == "_id" {
			return false, fmt.Errorf("%w: _id is immutable", store.ErrUnknownField)
		}
		update = append(update, bson.E{Key: field.Name, Value: field.Value})
	}

	result, err := c.coll.UpdateOne(ctx, query, bson.D{{Key: "$set", Value: update}})
	if err != nil {
		return false, c.translate(err)
	}
	return result.MatchedCount > 0, nil
}

func (c *Collection[T]) DeleteOne(ctx context.Context, filter store.Filter) (bool, error) {
	query, err := toQuery(filter)
	if err != nil {
		return false, err
	}
	result, err := c.coll.DeleteOne(ctx, query)
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// translate maps unique index violations to store.DuplicateKeyError. The
// indexes are named <field>_1, so the field is recovered from the name.
func (c *Collection[T]) translate(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	field := ""
	if match := dupIndexPattern.FindStringSubmatch(err.Error()); match != nil {
		field = match[1]
		if i := strings.LastIndex(field, "_"); i > 0 {
			field = field[:i]
		}
	}
	return &store.DuplicateKeyError{Collection: c.name, Field: field, Err: err}
}

func toQuery(filter store.Filter) (bson.D, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := bson.D{}
	idMatch := bson.D{}
	if filter.ID != "" {
		id, _ := primitive.ObjectIDFromHex(filter.ID)
		idMatch = append(idMatch, bson.E{Key: "$eq", Value: id})
	}
	if filter.ExcludeID != "" {
		id, _ := primitive.ObjectIDFromHex(filter.ExcludeID)
		idMatch = append(idMatch, bson.E{Key: "$ne", Value: id})
	}
	if len(idMatch) > 0 {
		query = append(query, bson.E{Key: "_id", Value: idMatch})
	}
	for _, cond := range filter.Conditions {
		query = append(query, bson.E{Key: cond.Field, Value: cond.Value})
	}
	return query, nil
}
