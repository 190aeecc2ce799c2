// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/kv"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/state"
)

var (
	propsBucket  = kv.Bucket("p")
	genesisIDKey = []byte("genesis-id")
)

// bootstrap builds the genesis into an empty database and records its id.
// A database holding another genesis is rejected.
func bootstrap(gene *genesis.Genesis, mainDB kv.Store, logDB *logdb.LogDB) error {
	props := propsBucket.NewStore(mainDB)
	id := gene.ID()

	stored, err := props.Get(genesisIDKey)
	if err != nil && !mainDB.IsNotFound(err) {
		return errors.Wrap(err, "read genesis id")
	}
	if err == nil {
		if !bytes.Equal(stored, id[:]) {
			return fmt.Errorf("genesis mismatch: database holds %x, want %x", stored, id)
		}
		logger.Info("genesis already built", "id", id)
		return nil
	}

	events, err := gene.Build(state.New(mainDB), logDB)
	if err != nil {
		return errors.WithMessage(err, "build genesis")
	}
	if err := props.Put(genesisIDKey, id[:]); err != nil {
		return errors.Wrap(err, "write genesis id")
	}
	logger.Info("genesis built", "name", gene.Name(), "id", id, "events", len(events))
	return nil
}
