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

// Governance layer. Privileged operations take a single authorization
// predicate: caller == group admin OR caller == protocol admin. The state
// machine is Forming → Active → Completed with Active ⇄ Paused and
// Active ⇄ Disputed excursions; EmergencyWithdraw forces Completed from any
// non-terminal state. Forming is never reentered.

// requireGroupOrProtocolAdmin enforces the dual-authorization predicate.
func requireGroupOrProtocolAdmin(tx rosca.Tx, group *rosca.Group, caller rosca.Address) error {
	if caller == group.Admin {
		return nil
	}
	isProto, err := isProtocolAdmin(tx, caller)
	if err != nil {
		return err
	}
	if !isProto {
		return rosca.ErrUnauthorized
	}
	return nil
}

// PauseGroup freezes a non-completed group.
func (c *Contract) PauseGroup(ctx context.Context, caller rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, caller); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if err := requireGroupOrProtocolAdmin(tx, group, caller); err != nil {
			return err
		}
		if group.Status == rosca.StatusCompleted {
			return rosca.ErrGroupCompleted
		}
		group.Status = rosca.StatusPaused
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventGroupPaused, GroupID: groupID, Member: caller})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Pauses.Inc()
	c.log.WithField("group_id", groupID).Info("group paused")
	return nil
}

// ResumeGroup reopens a paused group.
func (c *Contract) ResumeGroup(ctx context.Context, caller rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, caller); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if err := requireGroupOrProtocolAdmin(tx, group, caller); err != nil {
			return err
		}
		if group.Status != rosca.StatusPaused {
			return rosca.ErrGroupNotActive
		}
		group.Status = rosca.StatusActive
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventGroupResumed, GroupID: groupID, Member: caller})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Resumes.Inc()
	c.log.WithField("group_id", groupID).Info("group resumed")
	return nil
}

// RaiseDispute freezes an active group and records the single live dispute.
func (c *Contract) RaiseDispute(ctx context.Context, member rosca.Address, groupID uint64, reason string) error {
	if err := c.auth.RequireAuth(ctx, member); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if !group.HasMember(member) {
			return rosca.ErrNotMember
		}
		if group.Status != rosca.StatusActive {
			return rosca.ErrGroupNotActive
		}
		group.Status = rosca.StatusDisputed
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		if err := tx.Disputes().Set(&rosca.Dispute{
			GroupID:  groupID,
			RaisedBy: member,
			Reason:   reason,
			RaisedAt: c.now(),
		}); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventDisputeRaised, GroupID: groupID, Member: member})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Disputes.Inc()
	c.log.WithField("group_id", groupID).WithField("member", member).Info("dispute raised")
	return nil
}

// ResolveDispute clears the dispute record and reopens the group.
func (c *Contract) ResolveDispute(ctx context.Context, caller rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, caller); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if err := requireGroupOrProtocolAdmin(tx, group, caller); err != nil {
			return err
		}
		if group.Status != rosca.StatusDisputed {
			return rosca.ErrGroupNotActive
		}
		group.Status = rosca.StatusActive
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		if err := tx.Disputes().Remove(groupID); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventDisputeResolved, GroupID: groupID, Member: caller})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Resolutions.Inc()
	c.log.WithField("group_id", groupID).Info("dispute resolved")
	return nil
}

// GetDispute returns the live dispute of a group, if any.
func (c *Contract) GetDispute(ctx context.Context, groupID uint64) (*rosca.Dispute, error) {
	var dispute *rosca.Dispute
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		if _, err := tx.Groups().Get(groupID); err != nil {
			return err
		}
		var err error
		dispute, err = tx.Disputes().Get(groupID)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return dispute, nil
}

// EmergencyWithdraw unwinds a group ahead of schedule. Protocol admin only.
// The pool balance minus all still-held deposits is split into equal shares
// across current members (integer division, remainder stays on the pool);
// deposits are forfeited. The group ends Completed regardless of how much
// was distributable.
func (c *Contract) EmergencyWithdraw(ctx context.Context, caller rosca.Address, groupID uint64) error {
	if err := c.auth.RequireAuth(ctx, caller); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		admin, err := tx.Protocol().Admin()
		if err != nil {
			return err
		}
		if caller != admin {
			return rosca.ErrUnauthorized
		}
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if group.Status == rosca.StatusCompleted {
			return rosca.ErrGroupCompleted
		}

		balance, err := tx.Tokens().Balance(ctx, group.Token, PoolAccount)
		if err != nil {
			return err
		}
		if balance > 0 {
			held, err := tx.Deposits().All(groupID)
			if err != nil {
				return err
			}
			var totalDeposits int64
			for _, member := range group.Members {
				totalDeposits += held[member]
			}
			distributable := balance - totalDeposits
			if distributable > 0 {
				perMember := distributable / int64(len(group.Members))
				if perMember > 0 {
					for _, member := range group.Members {
						if err := tx.Tokens().Transfer(ctx, group.Token, PoolAccount, member, perMember); err != nil {
							return err
						}
					}
				}
			}
		}

		group.Status = rosca.StatusCompleted
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventEmergency, GroupID: groupID, Member: caller})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.Emergencies.Inc()
	c.log.WithField("group_id", groupID).Warn("emergency withdrawal executed")
	return nil
}

// SetGroupAdmin reassigns the group admin role. Current group admin only.
func (c *Contract) SetGroupAdmin(ctx context.Context, currentAdmin rosca.Address, groupID uint64, newAdmin rosca.Address) error {
	if err := c.auth.RequireAuth(ctx, currentAdmin); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, groupID, func(tx rosca.Tx) error {
		group, err := tx.Groups().Get(groupID)
		if err != nil {
			return err
		}
		if currentAdmin != group.Admin {
			return rosca.ErrUnauthorized
		}
		if group.Status == rosca.StatusCompleted {
			return rosca.ErrGroupCompleted
		}
		group.Admin = newAdmin
		if err := tx.Groups().Update(group); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventAdminChanged, GroupID: groupID, Member: newAdmin})
	})
	if err != nil {
		return c.failed(err)
	}

	c.metrics.AdminChanges.Inc()
	c.log.WithField("group_id", groupID).WithField("new_admin", newAdmin).Info("group admin changed")
	return nil
}
