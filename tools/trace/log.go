/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package trace records what happens to a ScopedBindings in a BoltDB
// file.
//
// Each session gets its own bucket.  Events are keyed by the bucket's
// sequence, so a session's events come back in the order they were
// recorded.
package trace

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	. "github.com/Comcast/rulebind/util/testutil"

	bolt "go.etcd.io/bbolt"
)

// Op names what happened.
type Op string

const (
	OpBind   Op = "bind"
	OpChange Op = "change"
	OpPush   Op = "push"
	OpPop    Op = "pop"
)

// Event is one thing that happened.
//
// Values are canonicalized (see core.Canonicalize) before they are
// stored.
type Event struct {
	Seq   uint64      `json:"seq,omitempty"`
	At    string      `json:"at"`
	Op    Op          `json:"op"`
	Scope string      `json:"scope,omitempty"`
	Name  string      `json:"name,omitempty"`
	Type  string      `json:"type,omitempty"`
	Old   interface{} `json:"old,omitempty"`
	New   interface{} `json:"new,omitempty"`
}

// Log is a BoltDB file of events.
type Log struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

// NewLog makes a Log.  Call Open before using it.
func NewLog(filename string) *Log {
	return &Log{
		filename: filename,
	}
}

func (l *Log) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(l.filename, 0644, opts)
	if err != nil {
		return err
	}
	l.db = db
	return nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) logf(format string, args ...interface{}) {
	if l.Debug {
		log.Printf("trace.Log."+format, args...)
	}
}

func key(seq uint64) []byte {
	bs := make([]byte, 8)
	binary.BigEndian.PutUint64(bs, seq)
	return bs
}

// Record appends the event to the session, setting the event's Seq.
func (l *Log) Record(session string, e *Event) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(session))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.Seq = seq
		js, err := json.Marshal(e)
		if err != nil {
			return err
		}
		l.logf("Record %s %s", session, js)
		return b.Put(key(seq), js)
	})
}

// Events returns the session's events in order.  An unknown session
// has no events.
func (l *Log) Events(session string) ([]*Event, error) {
	var es []*Event
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(session))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, bs := c.First(); k != nil; k, bs = c.Next() {
			var e Event
			if err := json.Unmarshal(bs, &e); err != nil {
				return err
			}
			es = append(es, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logf("Events %s found %d", session, len(es))

	return es, nil
}

// Sessions returns the names of the sessions in the log.
func (l *Log) Sessions() ([]string, error) {
	var acc []string
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	l.logf("Sessions %s", JS(acc))
	return acc, nil
}

// Remove deletes the session.  Removing an unknown session is not an
// error.
func (l *Log) Remove(session string) error {
	l.logf("Remove %s", session)
	return l.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(session))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}
