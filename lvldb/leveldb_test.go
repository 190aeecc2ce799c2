// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/swell/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	fileDB, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer fileDB.Close()

	memDB, err := NewMem()
	require.NoError(t, err)
	defer memDB.Close()

	for _, db := range []*LevelDB{fileDB, memDB} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		require.NoError(t, err)
		assert.True(t, has)

		_, err = db.Get(inValidKey)
		assert.True(t, db.IsNotFound(err))

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestBulkAndBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bucket := kv.Bucket("b").NewStore(db)
	other := kv.Bucket("c").NewStore(db)

	bulk := bucket.Bulk()
	require.NoError(t, bulk.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, bulk.Put([]byte("k2"), []byte("v2")))
	require.NoError(t, other.Put([]byte("k3"), []byte("v3")))

	// nothing visible before write
	_, err = bucket.Get([]byte("k1"))
	assert.True(t, bucket.IsNotFound(err))

	require.NoError(t, bulk.Write())

	raw, err := db.Get([]byte("bk1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	has, err := other.Has([]byte("k1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, bucket.Delete([]byte("k2")))
	_, err = db.Get([]byte("bk2"))
	assert.True(t, db.IsNotFound(err))
	got, err := other.Get([]byte("k3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v3"), got)
}
