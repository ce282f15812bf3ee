// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/corebase/corebase/internal/platform/docerr"
)

// DocumentStore implements corebase.MigrationStore over the same Mongo
// database the document storage adapter uses.
type DocumentStore struct {
	db          *mongo.Database
	collections []string
}

// NewDocumentStore builds a DocumentStore. collections lists every
// collection Reset must drop.
func NewDocumentStore(db *mongo.Database, collections []string) *DocumentStore {
	return &DocumentStore{db: db, collections: collections}
}

func (s *DocumentStore) coll() *mongo.Collection { return s.db.Collection("migrations") }

func (s *DocumentStore) AppliedNames(ctx context.Context) ([]string, error) {
	cursor, err := s.coll().Find(ctx, bson.M{})
	if err != nil {
		return nil, docerr.Wrap(err, "applied_names")
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, docerr.Wrap(err, "applied_names")
		}
		names = append(names, doc.Name)
	}
	return names, cursor.Err()
}

func (s *DocumentStore) Record(ctx context.Context, name string) error {
	_, err := s.coll().UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		(&mongo.UpdateOptions{}).SetUpsert(true),
	)
	if err != nil {
		return docerr.Wrap(err, "record_migration")
	}
	return nil
}

func (s *DocumentStore) Unrecord(ctx context.Context, name string) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return docerr.Wrap(err, "unrecord_migration")
	}
	return nil
}

// DropAll drops every collection this deployment knows about, including
// its own bookkeeping collection, for a full Reset.
func (s *DocumentStore) DropAll(ctx context.Context) error {
	for _, c := range s.collections {
		if err := s.db.Collection(c).Drop(ctx); err != nil {
			return docerr.Wrap(err, "drop_all")
		}
	}
	if err := s.coll().Drop(ctx); err != nil {
		return docerr.Wrap(err, "drop_all")
	}
	return nil
}
