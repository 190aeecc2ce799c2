// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// id packs the call sequence with the event index, see sequence.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	id INTEGER PRIMARY KEY,
	time INTEGER NOT NULL,
	address BLOB NOT NULL,
	topic0 BLOB,
	topic1 BLOB,
	topic2 BLOB,
	topic3 BLOB,
	data BLOB,
	caller BLOB NOT NULL,
	method TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(time);
CREATE INDEX IF NOT EXISTS event_i1 ON event(address);
CREATE INDEX IF NOT EXISTS event_i2 ON event(topic0);
CREATE INDEX IF NOT EXISTS event_i3 ON event(topic1);
CREATE INDEX IF NOT EXISTS event_i4 ON event(topic2);
CREATE INDEX IF NOT EXISTS event_i5 ON event(topic3);
`
