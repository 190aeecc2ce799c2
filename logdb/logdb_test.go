// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/test/datagen"
	"github.com/vechain/swell/tx"
)

var (
	contractA = swell.BytesToAddress([]byte("contractA"))
	contractB = swell.BytesToAddress([]byte("contractB"))
	topicX    = swell.BytesToBytes32([]byte("topicX"))
	topicY    = swell.BytesToBytes32([]byte("topicY"))
)

// newReceipt returns a receipt of call seq with one event per address, alternating topics.
func newReceipt(seq uint64, addrs ...swell.Address) *tx.Receipt {
	r := &tx.Receipt{
		Seq:      seq,
		Caller:   datagen.RandAddress(),
		Contract: addrs[0],
		Method:   "method",
		Time:     1000 + seq*10,
	}
	for i, addr := range addrs {
		topic := topicX
		if i%2 == 1 {
			topic = topicY
		}
		r.Events = append(r.Events, &tx.Event{
			Address: addr,
			Topics:  []swell.Bytes32{topic, datagen.RandomHash()},
			Data:    []byte{byte(seq), byte(i)},
		})
	}
	return r
}

func newLogDB(t *testing.T) *logdb.LogDB {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsert(t *testing.T) {
	db := newLogDB(t)

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Zero(t, seq)

	r := newReceipt(1, contractA, contractB)
	require.NoError(t, db.Publish(r))

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	ev := events[1]
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, uint32(1), ev.Index)
	assert.Equal(t, uint64(1010), ev.Time)
	assert.Equal(t, contractB, ev.Address)
	assert.Equal(t, r.Caller, ev.Caller)
	assert.Equal(t, "method", ev.Method)
	assert.Equal(t, []byte{1, 1}, ev.Data)
	require.NotNil(t, ev.Topics[0])
	assert.Equal(t, topicY, *ev.Topics[0])
	require.NotNil(t, ev.Topics[1])
	assert.Equal(t, r.Events[1].Topics[1], *ev.Topics[1])
	assert.Nil(t, ev.Topics[2])
	assert.Nil(t, ev.Topics[3])

	seq, err = db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestInsertSkipsReverted(t *testing.T) {
	db := newLogDB(t)

	r := newReceipt(1, contractA)
	r.Reverted = true
	require.NoError(t, db.Insert(r))
	require.NoError(t, db.Insert(&tx.Receipt{Seq: 2}))

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFilterEvents(t *testing.T) {
	db := newLogDB(t)
	for seq := uint64(1); seq <= 10; seq++ {
		require.NoError(t, db.Insert(newReceipt(seq, contractA, contractB, contractA)))
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		filter *logdb.EventFilter
		count  int
		first  [2]uint64 // seq, index
	}{
		{"all", &logdb.EventFilter{}, 30, [2]uint64{1, 0}},
		{"desc", &logdb.EventFilter{Order: logdb.DESC}, 30, [2]uint64{10, 2}},
		{"seq range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Seq, From: 3, To: 4}}, 6, [2]uint64{3, 0}},
		{"open seq range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Seq, From: 9}}, 6, [2]uint64{9, 0}},
		{"time range", &logdb.EventFilter{Range: &logdb.Range{Unit: logdb.Time, From: 1020, To: 1020}}, 3, [2]uint64{2, 0}},
		{"address", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Address: &contractB}}}, 10, [2]uint64{1, 1}},
		{"topic", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Topics: [4]*swell.Bytes32{&topicY}}}}, 10, [2]uint64{1, 1}},
		{"address and topic", &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{{Address: &contractA, Topics: [4]*swell.Bytes32{&topicY}}}}, 0, [2]uint64{}},
		{"criteria union", &logdb.EventFilter{
			Range:       &logdb.Range{Unit: logdb.Seq, From: 1, To: 1},
			CriteriaSet: []*logdb.EventCriteria{{Address: &contractB}, {Topics: [4]*swell.Bytes32{&topicX}}},
		}, 3, [2]uint64{1, 0}},
		{"paging", &logdb.EventFilter{Options: &logdb.Options{Offset: 4, Limit: 2}}, 2, [2]uint64{2, 1}},
		{"paging desc", &logdb.EventFilter{Order: logdb.DESC, Options: &logdb.Options{Offset: 1, Limit: 100}}, 29, [2]uint64{10, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, events, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first[0], events[0].Seq)
				assert.Equal(t, uint32(tt.first[1]), events[0].Index)
			}
		})
	}
}

func TestFilterEventsCanceled(t *testing.T) {
	db := newLogDB(t)
	require.NoError(t, db.Insert(newReceipt(1, contractA)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.FilterEvents(ctx, &logdb.EventFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())
	require.NoError(t, db.Insert(newReceipt(7, contractA)))
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seq)
}
