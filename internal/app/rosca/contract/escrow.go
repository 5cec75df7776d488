//
// Copyright 2025 SoroSave Protocol Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package contract

import (
	"context"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

// Deposit escrow. Deposits are refundable security amounts held on the pool
// account, tracked per (group, member). They are refunded on an orderly
// leave while forming and in one pass at normal completion; the emergency
// path forfeits them (see EmergencyWithdraw).

func collectDeposit(ctx context.Context, tx rosca.Tx, group *rosca.Group, member rosca.Address) error {
	if err := tx.Tokens().Transfer(ctx, group.Token, member, PoolAccount, group.DepositAmount); err != nil {
		return err
	}
	return tx.Deposits().Set(group.ID, member, group.DepositAmount)
}

// refundDeposit returns member's held deposit, if any, and clears the
// escrow entry.
func refundDeposit(ctx context.Context, tx rosca.Tx, group *rosca.Group, member rosca.Address) error {
	held, err := tx.Deposits().All(group.ID)
	if err != nil {
		return err
	}
	amount, ok := held[member]
	if !ok {
		return nil
	}
	if err := tx.Tokens().Transfer(ctx, group.Token, PoolAccount, member, amount); err != nil {
		return err
	}
	return tx.Deposits().Remove(group.ID, member)
}

// refundAllDeposits returns every current member's deposit in full. Called
// exactly once, when the group completes its last round.
func refundAllDeposits(ctx context.Context, tx rosca.Tx, group *rosca.Group) error {
	held, err := tx.Deposits().All(group.ID)
	if err != nil {
		return err
	}
	for _, member := range group.Members {
		amount, ok := held[member]
		if !ok {
			continue
		}
		if err := tx.Tokens().Transfer(ctx, group.Token, PoolAccount, member, amount); err != nil {
			return err
		}
		if err := tx.Deposits().Remove(group.ID, member); err != nil {
			return err
		}
	}
	return nil
}

// GetDeposits reports the still-held deposits of a group.
func (c *Contract) GetDeposits(ctx context.Context, groupID uint64) (map[rosca.Address]int64, error) {
	var held map[rosca.Address]int64
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}
		var err error
		held, err = tx.Deposits().All(groupID)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return held, nil
}
