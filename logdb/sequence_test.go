// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	type args struct {
		seq   uint64
		index uint32
	}
	tests := []struct {
		name string
		args args
	}{
		{"regular", args{1, 2}},
		{"zero", args{0, 0}},
		{"max seq", args{maxSeq, 1}},
		{"max index", args{5, MaxEventsPerCall - 1}},
		{"both max", args{maxSeq, MaxEventsPerCall - 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newSequence(tt.args.seq, tt.args.index)
			require.NoError(t, err)
			assert.Equal(t, tt.args.seq, got.Seq())
			assert.Equal(t, tt.args.index, got.Index())
			assert.GreaterOrEqual(t, int64(got), int64(0))
		})
	}

	_, err := newSequence(1, MaxEventsPerCall)
	assert.ErrorIs(t, err, errSequenceOverflow)
	_, err = newSequence(maxSeq+1, 0)
	assert.ErrorIs(t, err, errSequenceOverflow)

	a, _ := newSequence(1, MaxEventsPerCall-1)
	b, _ := newSequence(2, 0)
	assert.Less(t, int64(a), int64(b))
}
