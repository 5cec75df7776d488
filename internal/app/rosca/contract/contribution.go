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

// Contribute pays the member's share into the current round. The transfer
// and the ledger writes share one transaction: a rejected transfer leaves
// no partial state. The round closes when every current member has paid.
func (c *Contract) Contribute(ctx context.Context, member rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, member); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status != rosca.StatusActive {
			return rosca.ErrGroupNotActive
		}
		if !group.HasMember(member) {
			return rosca.ErrNotMember
		}
		round, err := tx.Rounds().Get(groupID, group.CurrentRound)
		if err != nil {
			return err
		}
		if round.IsComplete {
			return rosca.ErrRoundNotActive
		}
		if round.HasContributed(member) {
			return rosca.ErrAlreadyContributed
		}

		if err := tx.Tokens().Transfer(ctx, group.Token, member, PoolAccount, group.ContributionAmount); err != nil {
			return err
		}

		round.Contributions[member] = true
		round.TotalContributed += group.ContributionAmount
		if len(round.Contributions) == len(group.Members) {
			round.IsComplete = true
		}
		if err := tx.Rounds().Set(round); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{
			Kind:    rosca.EventContribution,
			GroupID: groupID,
			Member:  member,
			Amount:  group.ContributionAmount,
			Round:   round.Number,
		})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Contributions.Inc()
	c.log.WithField("group_id", groupID).WithField("member", member).Info("contribution recorded")
	return nil
}

// GetRoundStatus returns the ledger of one round.
func (c *Contract) GetRoundStatus(ctx context.Context, groupID uint64, number uint32) (*rosca.Round, error) {
	var round *rosca.Round
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		var err error
		round, err = tx.Rounds().Get(groupID, number)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return round, nil
}

// HasContributed reports whether member paid into the given round.
func (c *Contract) HasContributed(ctx context.Context, member rosca.Address, groupID uint64, number uint32) (bool, error) {
	round, err := c.GetRoundStatus(ctx, groupID, number)
	if err != nil {
		return false, err
	}
	return round.HasContributed(member), nil
}
