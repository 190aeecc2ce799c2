// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/swell/log"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

var logger = log.WithContext("pkg", "logdb")

const (
	insertEventQuery = "INSERT OR REPLACE INTO event(id, time, address, topic0, topic1, topic2, topic3, data, caller, method) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	newestSeqQuery   = "SELECT MAX(id) FROM event"
	selectEventQuery = "SELECT id, time, address, topic0, topic1, topic2, topic3, data, caller, method FROM event"
)

// LogDB indexes the events of executed calls.
type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps in-memory databases shared and serializes writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path,
		db,
		newStmtCache(db),
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the underlying sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Publish indexes the receipt, so LogDB can be registered as a runtime sink.
func (db *LogDB) Publish(receipt *tx.Receipt) error {
	return db.Insert(receipt)
}

// Insert writes all events of the receipt. Reverted receipts carry no events.
func (db *LogDB) Insert(receipt *tx.Receipt) error {
	if receipt.Reverted || len(receipt.Events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	return db.execInTx(func(sqlTx *sql.Tx) error {
		txStmt := sqlTx.Stmt(stmt)
		for i, txEvent := range receipt.Events {
			id, err := newSequence(receipt.Seq, uint32(i))
			if err != nil {
				return err
			}
			event := newEvent(receipt, uint32(i), txEvent)
			if _, err := txStmt.Exec(
				int64(id),
				event.Time,
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				event.Data,
				event.Caller.Bytes(),
				event.Method,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewestSeq returns the call sequence of the newest indexed event, 0 when empty.
func (db *LogDB) NewestSeq() (uint64, error) {
	stmt, err := db.stmtCache.Prepare(newestSeqQuery)
	if err != nil {
		return 0, err
	}
	var id sql.NullInt64
	if err := stmt.QueryRow().Scan(&id); err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, nil
	}
	return sequence(id.Int64).Seq(), nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, selectEventQuery+" ORDER BY id ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := selectEventQuery + " WHERE 1"
	if filter.Range != nil {
		column, from, to := "time", filter.Range.From, filter.Range.To
		if filter.Range.Unit != Time {
			column = "id"
			from, to = seqBound(from, 0), seqBound(to, MaxEventsPerCall-1)
		}
		args = append(args, from)
		stmt += " AND " + column + " >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, to)
			stmt += " AND " + column + " <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY id DESC"
	} else {
		stmt += " ORDER BY id ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			id      int64
			time    uint64
			address []byte
			topics  [4][]byte
			data    []byte
			caller  []byte
			method  string
		)
		if err := rows.Scan(
			&id,
			&time,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
			&caller,
			&method,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:     sequence(id).Seq(),
			Index:   sequence(id).Index(),
			Time:    time,
			Address: swell.BytesToAddress(address),
			Data:    data,
			Caller:  swell.BytesToAddress(caller),
			Method:  method,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := swell.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) error {
	sqlTx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(sqlTx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// seqBound converts a call sequence to an id bound, clamped to the id range.
func seqBound(seq uint64, index uint32) uint64 {
	if seq > maxSeq {
		seq = maxSeq
	}
	s, _ := newSequence(seq, index)
	return uint64(s)
}

func topicValue(topic *swell.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
