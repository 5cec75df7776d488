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

package memstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

type tx struct {
	data *data
}

func (t *tx) Groups() rosca.GroupStorage       { return (*groupStorage)(t) }
func (t *tx) Rounds() rosca.RoundStorage       { return (*roundStorage)(t) }
func (t *tx) Deposits() rosca.DepositStorage   { return (*depositStorage)(t) }
func (t *tx) Disputes() rosca.DisputeStorage   { return (*disputeStorage)(t) }
func (t *tx) Events() rosca.EventStorage       { return (*eventStorage)(t) }
func (t *tx) Templates() rosca.TemplateStorage { return (*templateStorage)(t) }
func (t *tx) Protocol() rosca.ProtocolStorage  { return (*protocolStorage)(t) }
func (t *tx) Tokens() rosca.TokenGateway       { return (*tokenLedger)(t) }

// --- Groups ---

type groupStorage tx

func (s *groupStorage) Insert(group *rosca.Group) error {
	s.data.counter++
	group.ID = s.data.counter
	s.data.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *groupStorage) Get(groupID uint64) (*rosca.Group, error) {
	group, ok := s.data.groups[groupID]
	if !ok {
		return nil, rosca.ErrGroupNotFound
	}
	return cloneGroup(group), nil
}

func (s *groupStorage) Update(group *rosca.Group) error {
	if _, ok := s.data.groups[group.ID]; !ok {
		return rosca.ErrGroupNotFound
	}
	s.data.groups[group.ID] = cloneGroup(group)
	return nil
}

func (s *groupStorage) AddMemberGroup(member rosca.Address, groupID uint64) error {
	s.data.memberGroups[member] = append(s.data.memberGroups[member], groupID)
	return nil
}

func (s *groupStorage) RemoveMemberGroup(member rosca.Address, groupID uint64) error {
	ids := s.data.memberGroups[member]
	kept := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != groupID {
			kept = append(kept, id)
		}
	}
	s.data.memberGroups[member] = kept
	return nil
}

func (s *groupStorage) MemberGroups(member rosca.Address) ([]uint64, error) {
	return append([]uint64(nil), s.data.memberGroups[member]...), nil
}

// --- Rounds ---

type roundStorage tx

func (s *roundStorage) Set(round *rosca.Round) error {
	s.data.rounds[roundKey{round.GroupID, round.Number}] = cloneRound(round)
	return nil
}

func (s *roundStorage) Get(groupID uint64, number uint32) (*rosca.Round, error) {
	round, ok := s.data.rounds[roundKey{groupID, number}]
	if !ok {
		return nil, rosca.ErrRoundNotActive
	}
	return cloneRound(round), nil
}

// --- Deposits ---

type depositStorage tx

func (s *depositStorage) Set(groupID uint64, member rosca.Address, amount int64) error {
	held, ok := s.data.deposits[groupID]
	if !ok {
		held = make(map[rosca.Address]int64)
		s.data.deposits[groupID] = held
	}
	held[member] = amount
	return nil
}

func (s *depositStorage) Remove(groupID uint64, member rosca.Address) error {
	delete(s.data.deposits[groupID], member)
	return nil
}

func (s *depositStorage) All(groupID uint64) (map[rosca.Address]int64, error) {
	held := make(map[rosca.Address]int64, len(s.data.deposits[groupID]))
	for member, amount := range s.data.deposits[groupID] {
		held[member] = amount
	}
	return held, nil
}

// --- Disputes ---

type disputeStorage tx

func (s *disputeStorage) Set(dispute *rosca.Dispute) error {
	cp := *dispute
	s.data.disputes[dispute.GroupID] = &cp
	return nil
}

func (s *disputeStorage) Get(groupID uint64) (*rosca.Dispute, error) {
	dispute, ok := s.data.disputes[groupID]
	if !ok {
		return nil, nil
	}
	cp := *dispute
	return &cp, nil
}

func (s *disputeStorage) Remove(groupID uint64) error {
	delete(s.data.disputes, groupID)
	return nil
}

// --- Events ---

type eventStorage tx

func (s *eventStorage) Append(event *rosca.Event) error {
	s.data.events = append(s.data.events, *event)
	return nil
}

func (s *eventStorage) ListByGroup(groupID uint64) ([]rosca.Event, error) {
	var events []rosca.Event
	for _, e := range s.data.events {
		if e.GroupID == groupID {
			events = append(events, e)
		}
	}
	return events, nil
}

// --- Templates ---

type templateStorage tx

func (s *templateStorage) Save(template *rosca.Template) error {
	s.data.templates[template.Owner] = append(s.data.templates[template.Owner], *template)
	return nil
}

func (s *templateStorage) Get(owner rosca.Address, templateID uint32) (*rosca.Template, error) {
	for _, t := range s.data.templates[owner] {
		if t.ID == templateID {
			cp := t
			return &cp, nil
		}
	}
	return nil, rosca.ErrTemplateNotFound
}

func (s *templateStorage) Count(owner rosca.Address) (uint32, error) {
	return uint32(len(s.data.templates[owner])), nil
}

// --- Protocol ---

type protocolStorage tx

func (s *protocolStorage) Admin() (rosca.Address, error) {
	if !s.data.hasAdmin {
		return "", rosca.ErrNotInitialized
	}
	return s.data.admin, nil
}

func (s *protocolStorage) SetAdmin(admin rosca.Address) error {
	s.data.admin = admin
	s.data.hasAdmin = true
	return nil
}

func (s *protocolStorage) HasAdmin() (bool, error) {
	return s.data.hasAdmin, nil
}

// --- Token ledger ---

type tokenLedger tx

func (l *tokenLedger) Transfer(ctx context.Context, token, from, to rosca.Address, amount int64) error {
	if amount < 0 {
		return rosca.ErrInvalidAmount
	}
	fromKey := accountKey{token, from}
	if l.data.balances[fromKey] < amount {
		return errors.Errorf("insufficient funds: %s has %d, needs %d", from, l.data.balances[fromKey], amount)
	}
	l.data.balances[fromKey] -= amount
	l.data.balances[accountKey{token, to}] += amount
	return nil
}

func (l *tokenLedger) Balance(ctx context.Context, token, account rosca.Address) (int64, error) {
	return l.data.balances[accountKey{token, account}], nil
}
