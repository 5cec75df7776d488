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

	"github.com/pkg/errors"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

// DistributePayout settles the current round: pays the accumulated pot to
// the round's recipient, then advances to the next round or completes the
// group. Permissionless: settlement is deliberately a separate call so that
// the one externally-fallible step (the payout transfer) can be retried
// without blocking contributions.
func (c *Contract) DistributePayout(ctx context.Context, groupID uint64) error {
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status != rosca.StatusActive {
			return rosca.ErrGroupNotActive
		}
		round, err := tx.Rounds().Get(groupID, group.CurrentRound)
		if err != nil {
			return err
		}
		if !round.IsComplete {
			return rosca.ErrRoundNotComplete
		}

		if err := tx.Tokens().Transfer(ctx, group.Token, PoolAccount, round.Recipient, round.TotalContributed); err != nil {
			return errors.Wrap(rosca.ErrPayoutFailed, err.Error())
		}
		if err := c.emit(tx, &rosca.Event{
			Kind:    rosca.EventPayout,
			GroupID: groupID,
			Member:  round.Recipient,
			Amount:  round.TotalContributed,
			Round:   round.Number,
		}); err != nil {
			return err
		}

		if group.CurrentRound >= group.TotalRounds {
			group.Status = rosca.StatusCompleted
			if err := tx.Groups().Update(group); err != nil {
				return err
			}
			if group.DepositAmount > 0 {
				if err := refundAllDeposits(ctx, tx, group); err != nil {
					return err
				}
			}
			return c.emit(tx, &rosca.Event{Kind: rosca.EventGroupCompleted, GroupID: groupID})
		}

		group.CurrentRound++
		next := &rosca.Round{
			GroupID:       groupID,
			Number:        group.CurrentRound,
			Recipient:     group.PayoutOrder[group.CurrentRound-1],
			Contributions: make(map[rosca.Address]bool),
			Deadline:      c.now() + int64(group.CycleLength),
		}
		if err := tx.Rounds().Set(next); err != nil {
			return err
		}
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventNewRound, GroupID: groupID, Round: group.CurrentRound})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Payouts.Inc()
	c.log.WithField("group_id", groupID).Info("round settled")
	return nil
}

// GetPayoutOrder returns the payout order fixed at start.
func (c *Contract) GetPayoutOrder(ctx context.Context, groupID uint64) ([]rosca.Address, error) {
	group, err := c.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return group.PayoutOrder, nil
}

// GetCurrentRecipient returns the recipient of the open round.
func (c *Contract) GetCurrentRecipient(ctx context.Context, groupID uint64) (rosca.Address, error) {
	var recipient rosca.Address
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status != rosca.StatusActive {
			return rosca.ErrGroupNotActive
		}
		round, err := tx.Rounds().Get(groupID, group.CurrentRound)
		if err != nil {
			return err
		}
		recipient = round.Recipient
		return nil
	})
	if err != nil {
		return "", c.failed(err)
	}
	return recipient, nil
}
