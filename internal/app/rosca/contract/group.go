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

// GroupParams is the configuration of a new group.
type GroupParams struct {
	Name               string
	Token              rosca.Address
	ContributionAmount int64
	DepositAmount      int64
	CycleLength        uint64
	MaxMembers         uint32
}

func (p GroupParams) validate() error {
	if p.ContributionAmount <= 0 || p.DepositAmount < 0 {
		return rosca.ErrInvalidAmount
	}
	if p.MaxMembers < 2 {
		return rosca.ErrInsufficientMembers
	}
	return nil
}

// CreateGroup creates a group in the forming state. The caller becomes the
// group admin and its first member; a configured security deposit is
// collected from the admin before the group is persisted.
func (c *Contract) CreateGroup(ctx context.Context, admin rosca.Address, params GroupParams) (uint64, error) {
	if err := c.auth.RequireAuth(ctx, admin); err != nil {
		return 0, c.failed(err)
	}
	if err := params.validate(); err != nil {
		return 0, c.failed(err)
	}

	var groupID uint64
	err := c.store.Update(ctx, 0, func(tx rosca.Tx) error {
		group := &rosca.Group{
			Name:               params.Name,
			Admin:              admin,
			Token:              params.Token,
			ContributionAmount: params.ContributionAmount,
			DepositAmount:      params.DepositAmount,
			CycleLength:        params.CycleLength,
			MaxMembers:         params.MaxMembers,
			Members:            []rosca.Address{admin},
			CurrentRound:       0,
			TotalRounds:        0,
			Status:             rosca.StatusForming,
			CreatedAt:          c.now(),
		}
		if err := tx.Groups().Insert(group); err != nil {
			return err
		}
		groupID = group.ID
		if group.DepositAmount > 0 {
			if err := collectDeposit(ctx, tx, group, admin); err != nil {
				return err
			}
		}
		if err := tx.Groups().AddMemberGroup(admin, group.ID); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventGroupCreated, GroupID: group.ID, Member: admin})
	})
	if err != nil {
		return 0, c.failed(err)
	}

	c.metrics.Creates.Inc()
	c.log.WithField("group_id", groupID).WithField("admin", admin).Info("group created")
	return groupID, nil
}

// JoinGroup appends member to a still-forming group, collecting the
// security deposit first when one is configured.
func (c *Contract) JoinGroup(ctx context.Context, member rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, member); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status != rosca.StatusForming {
			return rosca.ErrGroupNotForming
		}
		if uint32(len(group.Members)) >= group.MaxMembers {
			return rosca.ErrGroupFull
		}
		if group.HasMember(member) {
			return rosca.ErrAlreadyMember
		}
		if group.DepositAmount > 0 {
			if err := collectDeposit(ctx, tx, group, member); err != nil {
				return err
			}
		}
		group.Members = append(group.Members, member)
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		if err := tx.Groups().AddMemberGroup(member, groupID); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventMemberJoined, GroupID: groupID, Member: member})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Joins.Inc()
	c.log.WithField("group_id", groupID).WithField("member", member).Info("member joined")
	return nil
}

// LeaveGroup removes member from a forming group and refunds any held
// deposit. The group admin may never leave their own group.
func (c *Contract) LeaveGroup(ctx context.Context, member rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, member); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status != rosca.StatusForming {
			return rosca.ErrGroupNotForming
		}
		if member == group.Admin {
			return rosca.ErrUnauthorized
		}
		if !group.HasMember(member) {
			return rosca.ErrNotMember
		}
		if err := refundDeposit(ctx, tx, group, member); err != nil {
			return err
		}
		group.RemoveMember(member)
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		if err := tx.Groups().RemoveMemberGroup(member, groupID); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventMemberLeft, GroupID: groupID, Member: member})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Leaves.Inc()
	c.log.WithField("group_id", groupID).WithField("member", member).Info("member left")
	return nil
}

// StartGroup freezes the payout order to the join order and opens round 1.
// Only the group admin can start a group.
func (c *Contract) StartGroup(ctx context.Context, admin rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, admin); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if admin != group.Admin {
			return rosca.ErrUnauthorized
		}
		if group.Status != rosca.StatusForming {
			return rosca.ErrGroupNotForming
		}
		if len(group.Members) < 2 {
			return rosca.ErrInsufficientMembers
		}

		// Payout order is the member join order. Randomization is a
		// candidate for a later protocol version.
		group.PayoutOrder = append([]rosca.Address(nil), group.Members...)
		group.TotalRounds = uint32(len(group.Members))
		group.CurrentRound = 1
		group.Status = rosca.StatusActive

		round := &rosca.Round{
			GroupID:       groupID,
			Number:        1,
			Recipient:     group.PayoutOrder[0],
			Contributions: make(map[rosca.Address]bool),
			Deadline:      c.now() + int64(group.CycleLength),
		}
		if err := tx.Rounds().Set(round); err != nil {
			return err
		}
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventGroupStarted, GroupID: groupID})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Starts.Inc()
	c.log.WithField("group_id", groupID).Info("group started")
	return nil
}

// GetGroup returns group details.
func (c *Contract) GetGroup(ctx context.Context, groupID uint64) (*rosca.Group, error) {
	var group *rosca.Group
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		var err error
		group, err = tx.Groups().Get(groupID)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return group, nil
}

// GetMemberGroups returns all group ids member belongs to.
func (c *Contract) GetMemberGroups(ctx context.Context, member rosca.Address) ([]uint64, error) {
	var ids []uint64
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		var err error
		ids, err = tx.Groups().MemberGroups(member)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return ids, nil
}

// GetGroupEvents returns the append-only event log of a group, oldest first.
func (c *Contract) GetGroupEvents(ctx context.Context, groupID uint64) ([]rosca.Event, error) {
	var events []rosca.Event
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}
		var err error
		events, err = tx.Events().ListByGroup(groupID)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return events, nil
}
