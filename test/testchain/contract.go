// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"errors"
	"math/big"

	"github.com/vechain/swell/abi"
	"github.com/vechain/swell/genesis"
	"github.com/vechain/swell/swell"
	"github.com/vechain/swell/tx"
)

// Contract binds a builtin contract address to an ABI and a sending account.
type Contract struct {
	chain *Chain
	abi   *abi.ABI
	addr  swell.Address
	acc   genesis.DevAccount
}

func NewContract(chain *Chain, acc genesis.DevAccount, addr swell.Address, abi *abi.ABI) *Contract {
	return &Contract{
		chain: chain,
		abi:   abi,
		addr:  addr,
		acc:   acc,
	}
}

func (c *Contract) Attach(acc genesis.DevAccount) *Contract {
	contract := *c
	contract.acc = acc
	return &contract
}

// Call calls a contract method without keeping its writes and returns the result.
func (c *Contract) Call(method string, args ...any) ([]byte, error) {
	data, err := c.encode(method, args...)
	if err != nil {
		return nil, err
	}
	return c.chain.Inspect(c.acc.Address, c.addr, nil, data)
}

// CallInto calls a contract method and decodes the result into the result argument.
func (c *Contract) CallInto(method string, result any, args ...any) error {
	data, err := c.Call(method, args...)
	if err != nil {
		return err
	}
	methodABI, ok := c.abi.MethodByName(method)
	if !ok {
		return errors.New("method not found")
	}
	return methodABI.DecodeOutput(data, result)
}

// Send executes a contract method with value attached and returns the receipt.
func (c *Contract) Send(method string, value *big.Int, args ...any) (*tx.Receipt, error) {
	data, err := c.encode(method, args...)
	if err != nil {
		return nil, err
	}
	receipt, _, err := c.chain.Exec(c.acc.Address, c.addr, value, data)
	return receipt, err
}

func (c *Contract) encode(method string, args ...any) ([]byte, error) {
	methodABI, ok := c.abi.MethodByName(method)
	if !ok {
		return nil, errors.New("method not found")
	}
	return methodABI.EncodeInput(args...)
}
