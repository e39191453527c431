// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package fingerprint records what each generation run produced so that
// unchanged dialects can be skipped on the next run.
//
// Records are stored in a bbolt database, one key per dialect, encoded as
// CBOR. A record whose value cannot be decoded is treated as missing.
package fingerprint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

// Record describes the last successful generation of one dialect.
type Record struct {
	// Fingerprint is the digest of everything that determines the output.
	Fingerprint []byte `cbor:"1,keyasint"`

	// Files lists the produced paths relative to the output directory.
	Files []string `cbor:"2,keyasint"`

	// RunID identifies the run that wrote the record.
	RunID string `cbor:"3,keyasint"`

	// Generated is when the record was written.
	Generated time.Time `cbor:"4,keyasint"`
}

var bucket = []byte("fingerprints")

var (
	canonical cbor.EncMode
	records   cbor.EncMode
)

func init() {
	var err error
	if canonical, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	if records, err = opts.EncMode(); err != nil {
		panic(err)
	}
}

// Compute returns the SHA-256 digest of the deterministic CBOR encoding of
// v. Equal values always produce equal digests; map keys are sorted.
func Compute(v any) ([]byte, error) {
	data, err := canonical.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fingerprint input: %w", err)
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// Store persists records in a bbolt database.
type Store struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open opens or creates the database at path, creating its directory.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open fingerprints: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open fingerprints %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open fingerprints %s: %w", path, err), db.Close())
	}
	return &Store{db: db, log: log}, nil
}

// Get returns the record of dialect, or nil when there is none or it is
// corrupt.
func (s *Store) Get(dialect string) (*Record, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(dialect)); v != nil {
			data = slices.Clone(v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}

	var r Record
	if err := cbor.Unmarshal(data, &r); err != nil {
		s.log.Warn().Err(err).Str("dialect", dialect).Msg("ignoring corrupt fingerprint record")
		return nil, nil
	}
	return &r, nil
}

// Put stores the record of dialect.
func (s *Store) Put(dialect string, r *Record) error {
	data, err := records.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode fingerprint %s: %w", dialect, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(dialect), data)
	})
}

// Delete removes the record of dialect. Deleting a missing record is not
// an error.
func (s *Store) Delete(dialect string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(dialect))
	})
}

// Keys returns the dialects that have a record, sorted.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// putRaw stores data under dialect unchanged.
func (s *Store) putRaw(dialect string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(dialect), data)
	})
}
