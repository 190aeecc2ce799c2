// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package calls dry-runs abi encoded calls against the builtin contracts. Writes are never kept.
package calls

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Call is a call to inspect.
type Call struct {
	Caller swell.Address         `json:"caller"`
	To     *swell.Address        `json:"to"`
	Value  *math.HexOrDecimal256 `json:"value"`
	Data   hexutil.Bytes         `json:"data"`
}

// Event is an event the call would emit.
type Event struct {
	Address swell.Address   `json:"address"`
	Topics  []swell.Bytes32 `json:"topics"`
	Data    hexutil.Bytes   `json:"data"`
}

// Result is the outcome of an inspected call.
type Result struct {
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Data     hexutil.Bytes `json:"data"`
	Events   []*Event      `json:"events"`
	Reverted bool          `json:"reverted"`
	VMError  string        `json:"vmError"`
}

type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

func convertEvents(events tx.Events) []*Event {
	result := make([]*Event, 0, len(events))
	for _, e := range events {
		result = append(result, &Event{
			Address: e.Address,
			Topics:  e.Topics,
			Data:    e.Data,
		})
	}
	return result
}

func (c *Calls) inspect(req *http.Request, call *Call) (*Result, error) {
	nc, err := builtin.HandleNativeCall(*call.To, call.Data)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "data"))
	}
	name, _ := builtin.NameOf(nc.Contract)
	result := &Result{
		Contract: name,
		Method:   nc.Method,
		Events:   []*Event{},
	}

	var value *big.Int
	if call.Value != nil {
		value = (*big.Int)(call.Value)
	}
	var output []byte
	events, err := c.rt.Inspect(req.Context(), nc.Runtime(call.Caller, value, &output))
	if err != nil {
		if req.Context().Err() != nil {
			return nil, err
		}
		result.Reverted = true
		result.VMError = err.Error()
		return result, nil
	}
	result.Data = output
	result.Events = convertEvents(events)
	return result, nil
}

func (c *Calls) handleInspect(w http.ResponseWriter, req *http.Request) error {
	var call Call
	if err := utils.ParseJSON(req.Body, &call); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if call.To == nil {
		return utils.BadRequest(errors.New("to: required"))
	}
	if call.Value != nil && (*big.Int)(call.Value).Sign() < 0 {
		return utils.BadRequest(errors.New("value: negative"))
	}
	result, err := c.inspect(req, &call)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /calls").
		HandlerFunc(utils.WrapHandlerFunc(c.handleInspect))
}
