// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transactions executes signed calls against the builtin contracts.
package transactions

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/builtin"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

var logger = log.WithContext("pkg", "transactions")

// RawTx carries a hex encoded signed transaction.
type RawTx struct {
	Raw string `json:"raw"`
}

func (r *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(r.Raw)
	if err != nil {
		return nil, err
	}
	return tx.Decode(data)
}

// Result is the outcome of an executed transaction.
type Result struct {
	ID       swell.Bytes32 `json:"id"`
	Seq      uint64        `json:"seq"`
	Origin   swell.Address `json:"origin"`
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Data     hexutil.Bytes `json:"data"`
	Reverted bool          `json:"reverted"`
	VMError  string        `json:"vmError"`
}

type Transactions struct {
	rt       *runtime.Runtime
	chainTag byte
}

func New(rt *runtime.Runtime, chainTag byte) *Transactions {
	return &Transactions{rt, chainTag}
}

func (t *Transactions) execute(req *http.Request, trx *tx.Transaction) (*Result, error) {
	if trx.ChainTag() != t.chainTag {
		return nil, utils.BadRequest(errors.Errorf("chain tag: want %d, got %d", t.chainTag, trx.ChainTag()))
	}
	origin, err := trx.Origin()
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "signature"))
	}
	nc, err := builtin.HandleNativeCall(trx.To(), trx.Data())
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "data"))
	}

	var output []byte
	nonce := trx.Nonce()
	call := nc.Runtime(origin, trx.Value(), &output)
	call.Nonce = &nonce

	receipt, err := t.rt.Exec(req.Context(), call)
	if receipt == nil {
		if errors.Is(err, runtime.ErrNonceMismatch) {
			return nil, utils.HTTPError(err, http.StatusForbidden)
		}
		return nil, err
	}

	name, _ := builtin.NameOf(nc.Contract)
	result := &Result{
		ID:       trx.ID(),
		Seq:      receipt.Seq,
		Origin:   origin,
		Contract: name,
		Method:   nc.Method,
		Reverted: receipt.Reverted,
		VMError:  receipt.RevertReason,
	}
	if !receipt.Reverted {
		result.Data = output
	}
	logger.Debug("transaction executed", "id", result.ID, "origin", origin, "method", nc.Method, "reverted", receipt.Reverted)
	return result, nil
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw RawTx
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	trx, err := raw.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	result, err := t.execute(req, trx)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transactions").
		HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
}
