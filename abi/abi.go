// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/vechain/swell/swell"
)

// ABI holds information about methods and events of contract.
type ABI struct {
	abi          ethabi.ABI
	nameToMethod map[string]*Method
	methods      map[MethodID]*Method
	nameToEvent  map[string]*Event
	events       map[swell.Bytes32]*Event
}

// New create an ABI instance.
func New(data []byte) (*ABI, error) {
	parsed, err := ethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	abi := &ABI{
		abi:          parsed,
		nameToMethod: make(map[string]*Method),
		methods:      make(map[MethodID]*Method),
		nameToEvent:  make(map[string]*Event),
		events:       make(map[swell.Bytes32]*Event),
	}
	for name := range parsed.Methods {
		m := parsed.Methods[name]
		method := &Method{method: &m}
		copy(method.id[:], m.ID)
		abi.methods[method.id] = method
		abi.nameToMethod[name] = method
	}
	for name := range parsed.Events {
		ev := parsed.Events[name]
		event := newEvent(&ev)
		abi.events[event.ID()] = event
		abi.nameToEvent[name] = event
	}
	return abi, nil
}

// MethodByInput find the method for given input.
// If the input shorter than MethodID, or method not found, an error returned.
func (a *ABI) MethodByInput(input []byte) (*Method, error) {
	id, err := ExtractMethodID(input)
	if err != nil {
		return nil, err
	}
	m, found := a.methods[id]
	if !found {
		return nil, errors.New("method not found")
	}
	return m, nil
}

// MethodByName find method for the given method name.
func (a *ABI) MethodByName(name string) (*Method, bool) {
	m, found := a.nameToMethod[name]
	return m, found
}

// MethodByID returns the method for the given id.
func (a *ABI) MethodByID(id MethodID) (*Method, bool) {
	m, found := a.methods[id]
	return m, found
}

// EventByName find event for the given event name.
func (a *ABI) EventByName(name string) (*Event, bool) {
	e, found := a.nameToEvent[name]
	return e, found
}

// EventByID returns the event for the given event id.
func (a *ABI) EventByID(id swell.Bytes32) (*Event, bool) {
	e, found := a.events[id]
	return e, found
}

// MustEventByName is like EventByName but panics when the event is not declared.
func (a *ABI) MustEventByName(name string) *Event {
	e, found := a.nameToEvent[name]
	if !found {
		panic("event not found: " + name)
	}
	return e
}

// MustNew is like New but panics on malformed input.
func MustNew(data []byte) *ABI {
	a, err := New(data)
	if err != nil {
		panic(err)
	}
	return a
}
