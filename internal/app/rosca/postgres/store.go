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

// Package postgres persists the contract state in PostgreSQL via go-pg.
// Update transactions take a FOR UPDATE lock on the group row first, which
// serializes all calls against one group across processes.
package postgres

import (
	"context"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

type Store struct {
	db  *pg.DB
	obs *observability.Observability
}

func NewStore(obs *observability.Observability, db *pg.DB) *Store {
	return &Store{db: db, obs: obs}
}

func (s *Store) View(ctx context.Context, fn func(tx rosca.Tx) error) error {
	return fn(newTx(s.obs, s.db))
}

func (s *Store) Update(ctx context.Context, groupID uint64, fn func(tx rosca.Tx) error) error {
	return s.db.RunInTransaction(func(pgtx *pg.Tx) error {
		if groupID != 0 {
			// Lock the group row for the whole call. A missing group is not
			// an error here: fn reports GroupNotFound itself.
			if _, err := pgtx.Exec("SELECT id FROM groups WHERE id = ? FOR UPDATE", groupID); err != nil {
				return errors.Wrapf(err, "failed to lock group %d", groupID)
			}
		}
		return fn(newTx(s.obs, pgtx))
	})
}

type storeTx struct {
	obs *observability.Observability
	db  orm.DB

	groups    *GroupStorage
	rounds    *RoundStorage
	deposits  *DepositStorage
	disputes  *DisputeStorage
	events    *EventStorage
	templates *TemplateStorage
	protocol  *ProtocolStorage
	tokens    *TokenLedger
}

func newTx(obs *observability.Observability, db orm.DB) *storeTx {
	return &storeTx{
		obs:       obs,
		db:        db,
		groups:    NewGroupStorage(obs, db),
		rounds:    NewRoundStorage(obs, db),
		deposits:  NewDepositStorage(obs, db),
		disputes:  NewDisputeStorage(obs, db),
		events:    NewEventStorage(obs, db),
		templates: NewTemplateStorage(obs, db),
		protocol:  NewProtocolStorage(obs, db),
		tokens:    NewTokenLedger(obs, db),
	}
}

func (t *storeTx) Groups() rosca.GroupStorage       { return t.groups }
func (t *storeTx) Rounds() rosca.RoundStorage       { return t.rounds }
func (t *storeTx) Deposits() rosca.DepositStorage   { return t.deposits }
func (t *storeTx) Disputes() rosca.DisputeStorage   { return t.disputes }
func (t *storeTx) Events() rosca.EventStorage       { return t.events }
func (t *storeTx) Templates() rosca.TemplateStorage { return t.templates }
func (t *storeTx) Protocol() rosca.ProtocolStorage  { return t.protocol }
func (t *storeTx) Tokens() rosca.TokenGateway       { return t.tokens }
