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

// Package memstore is an in-memory rosca.Store with an embedded token
// ledger. Update transactions run against a deep copy of the state which
// replaces the live state only on success, so a failed call is a clean
// no-op. Used as the test backend and for embedded single-process runs.
package memstore

import (
	"context"
	"sync"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

type roundKey struct {
	groupID uint64
	number  uint32
}

type accountKey struct {
	token   rosca.Address
	account rosca.Address
}

type data struct {
	hasAdmin     bool
	admin        rosca.Address
	counter      uint64
	groups       map[uint64]*rosca.Group
	rounds       map[roundKey]*rosca.Round
	deposits     map[uint64]map[rosca.Address]int64
	disputes     map[uint64]*rosca.Dispute
	events       []rosca.Event
	templates    map[rosca.Address][]rosca.Template
	memberGroups map[rosca.Address][]uint64
	balances     map[accountKey]int64
}

func newData() *data {
	return &data{
		groups:       make(map[uint64]*rosca.Group),
		rounds:       make(map[roundKey]*rosca.Round),
		deposits:     make(map[uint64]map[rosca.Address]int64),
		disputes:     make(map[uint64]*rosca.Dispute),
		templates:    make(map[rosca.Address][]rosca.Template),
		memberGroups: make(map[rosca.Address][]uint64),
		balances:     make(map[accountKey]int64),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.hasAdmin = d.hasAdmin
	c.admin = d.admin
	c.counter = d.counter
	for id, g := range d.groups {
		c.groups[id] = cloneGroup(g)
	}
	for k, r := range d.rounds {
		c.rounds[k] = cloneRound(r)
	}
	for id, held := range d.deposits {
		m := make(map[rosca.Address]int64, len(held))
		for member, amount := range held {
			m[member] = amount
		}
		c.deposits[id] = m
	}
	for id, dispute := range d.disputes {
		cp := *dispute
		c.disputes[id] = &cp
	}
	c.events = append([]rosca.Event(nil), d.events...)
	for owner, list := range d.templates {
		c.templates[owner] = append([]rosca.Template(nil), list...)
	}
	for member, ids := range d.memberGroups {
		c.memberGroups[member] = append([]uint64(nil), ids...)
	}
	for k, balance := range d.balances {
		c.balances[k] = balance
	}
	return c
}

func cloneGroup(g *rosca.Group) *rosca.Group {
	c := *g
	c.Members = append([]rosca.Address(nil), g.Members...)
	c.PayoutOrder = append([]rosca.Address(nil), g.PayoutOrder...)
	return &c
}

func cloneRound(r *rosca.Round) *rosca.Round {
	c := *r
	c.Contributions = make(map[rosca.Address]bool, len(r.Contributions))
	for member, ok := range r.Contributions {
		c.Contributions[member] = ok
	}
	return &c
}

// Store implements rosca.Store. A single mutex serializes calls, which
// reproduces the one-call-at-a-time execution model of the contract host.
type Store struct {
	mu   sync.Mutex
	data *data
}

func New() *Store {
	return &Store{data: newData()}
}

func (s *Store) View(ctx context.Context, fn func(tx rosca.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{data: s.data})
}

func (s *Store) Update(ctx context.Context, groupID uint64, fn func(tx rosca.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.clone()
	if err := fn(&tx{data: next}); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Mint credits an account on the embedded token ledger. Test and bootstrap
// helper; bypasses the transactional path.
func (s *Store) Mint(token, account rosca.Address, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.balances[accountKey{token, account}] += amount
}

// Balance reads an account balance outside any transaction.
func (s *Store) Balance(token, account rosca.Address) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.balances[accountKey{token, account}]
}
