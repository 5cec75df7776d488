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

package rosca

import (
	"context"
	"time"
)

// GroupStorage persists groups and the member→groups reverse index. The
// reverse index is derived state and is maintained inside the same
// transaction as the authoritative member list.
type GroupStorage interface {
	// Insert assigns the next monotonic group id and persists the group.
	Insert(group *Group) error
	Get(groupID uint64) (*Group, error)
	Update(group *Group) error
	AddMemberGroup(member Address, groupID uint64) error
	RemoveMemberGroup(member Address, groupID uint64) error
	MemberGroups(member Address) ([]uint64, error)
}

type RoundStorage interface {
	Set(round *Round) error
	// Get fails with ErrRoundNotActive if the round record does not exist.
	Get(groupID uint64, number uint32) (*Round, error)
}

// DepositStorage is owned by the deposit escrow; other components only read
// it for reporting.
type DepositStorage interface {
	Set(groupID uint64, member Address, amount int64) error
	Remove(groupID uint64, member Address) error
	// All returns the still-held deposits of a group, member → amount.
	All(groupID uint64) (map[Address]int64, error)
}

type DisputeStorage interface {
	Set(dispute *Dispute) error
	Get(groupID uint64) (*Dispute, error)
	Remove(groupID uint64) error
}

type EventStorage interface {
	Append(event *Event) error
	ListByGroup(groupID uint64) ([]Event, error)
}

type TemplateStorage interface {
	Save(template *Template) error
	Get(owner Address, templateID uint32) (*Template, error)
	Count(owner Address) (uint32, error)
}

// ProtocolStorage holds the protocol-level singleton state.
type ProtocolStorage interface {
	// Admin fails with ErrNotInitialized when no protocol admin is set.
	Admin() (Address, error)
	SetAdmin(admin Address) error
	HasAdmin() (bool, error)
}

// TokenGateway is the fungible-token transfer primitive. Transfers are
// atomic and all-or-nothing: they reject on insufficient funds or unknown
// accounts and, when backed by the same database as the Store, participate
// in the calling transaction.
type TokenGateway interface {
	Transfer(ctx context.Context, token, from, to Address, amount int64) error
	Balance(ctx context.Context, token, account Address) (int64, error)
}

// Tx vends the storages of one transaction. Everything obtained from a Tx
// shares its commit/rollback fate.
type Tx interface {
	Groups() GroupStorage
	Rounds() RoundStorage
	Deposits() DepositStorage
	Disputes() DisputeStorage
	Events() EventStorage
	Templates() TemplateStorage
	Protocol() ProtocolStorage
	Tokens() TokenGateway
}

// Store runs functions transactionally. One call is processed to completion
// before the next begins against the same group: Update serializes on the
// group id, so a genuinely concurrent host keeps the single-writer-per-call
// discipline of the contract model.
type Store interface {
	// View runs fn without taking the group lock. Used by pure reads.
	View(ctx context.Context, fn func(tx Tx) error) error
	// Update runs fn holding exclusive access to groupID; every mutation fn
	// performs is committed together or not at all. groupID 0 means the call
	// touches no existing group (creation, initialization, templates).
	Update(ctx context.Context, groupID uint64, fn func(tx Tx) error) error
}

// Authorizer is the entry-point authorization check: RequireAuth aborts the
// call with ErrUnauthorized unless principal co-signed it.
type Authorizer interface {
	RequireAuth(ctx context.Context, principal Address) error
}

type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
