/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package models defines the domain payload carried by feed notifications.
package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// PendingTx is the pending-transaction record pushed by the aggregated
// mempool feed. Quantities arrive as 0x-prefixed hex strings following the
// Ethereum JSON conventions. A missing `from` decodes to the zero address.
type PendingTx struct {
	Type     hexutil.Uint64  `json:"type"`
	Hash     common.Hash     `json:"hash"`
	From     common.Address  `json:"from"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	GasLimit hexutil.Uint64  `json:"gasLimit"`
	To       *common.Address `json:"to"`
	Data     hexutil.Bytes   `json:"data"`
	V        hexutil.Big     `json:"v"`
	R        hexutil.Big     `json:"r"`
	S        hexutil.Big     `json:"s"`
	Value    hexutil.Big     `json:"value"`
	ChainId  *hexutil.Big    `json:"chainId"`

	// Only present on typed (EIP-2930/1559) transactions.
	AccessList           *types.AccessList `json:"accessList,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big      `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexutil.Big      `json:"maxFeePerGas,omitempty"`

	// Only present on legacy and EIP-2930 transactions.
	GasPrice *hexutil.Big `json:"gasPrice,omitempty"`
}

// ToTransaction converts the feed record into a canonical go-ethereum
// transaction, picking the inner transaction kind from the type field.
func (tx *PendingTx) ToTransaction() *types.Transaction {
	var accessList types.AccessList
	if tx.AccessList != nil {
		accessList = *tx.AccessList
	}

	switch uint8(tx.Type) {
	case types.DynamicFeeTxType:
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:    bigOrZero(tx.ChainId),
			Nonce:      uint64(tx.Nonce),
			GasTipCap:  bigOrZero(tx.MaxPriorityFeePerGas),
			GasFeeCap:  bigOrZero(tx.MaxFeePerGas),
			Gas:        uint64(tx.GasLimit),
			To:         tx.To,
			Value:      tx.Value.ToInt(),
			Data:       tx.Data,
			AccessList: accessList,
			V:          tx.V.ToInt(),
			R:          tx.R.ToInt(),
			S:          tx.S.ToInt(),
		})
	case types.AccessListTxType:
		return types.NewTx(&types.AccessListTx{
			ChainID:    bigOrZero(tx.ChainId),
			Nonce:      uint64(tx.Nonce),
			GasPrice:   bigOrZero(tx.GasPrice),
			Gas:        uint64(tx.GasLimit),
			To:         tx.To,
			Value:      tx.Value.ToInt(),
			Data:       tx.Data,
			AccessList: accessList,
			V:          tx.V.ToInt(),
			R:          tx.R.ToInt(),
			S:          tx.S.ToInt(),
		})
	default:
		return types.NewTx(&types.LegacyTx{
			Nonce:    uint64(tx.Nonce),
			GasPrice: bigOrZero(tx.GasPrice),
			Gas:      uint64(tx.GasLimit),
			To:       tx.To,
			Value:    tx.Value.ToInt(),
			Data:     tx.Data,
			V:        tx.V.ToInt(),
			R:        tx.R.ToInt(),
			S:        tx.S.ToInt(),
		})
	}
}

func bigOrZero(v *hexutil.Big) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToInt()
}
