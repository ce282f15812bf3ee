// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// corebase's own primary keys are backend-native (bigserial for relational,
// ObjectID for document; see pkg/corebase/id.go), so this package's one
// remaining job is request ids: a time-sortable value middleware.RequestID
// attaches to every inbound request for log correlation.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string, falling back to a random v4 if the OS
// entropy source rejects a v7 (practically never).
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
