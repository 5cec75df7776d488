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

package postgres

import (
	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

type DisputeSchema struct {
	tableName struct{} `sql:"disputes"`

	GroupID  uint64 `sql:"group_id,pk"`
	RaisedBy string
	Reason   string
	RaisedAt int64
}

func NewDisputeStorage(obs *observability.Observability, db orm.DB) *DisputeStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_dispute_storage_error_counter",
		Help: "",
	})
	return &DisputeStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type DisputeStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *DisputeStorage) Set(model *rosca.Dispute) error {
	row := &DisputeSchema{
		GroupID:  model.GroupID,
		RaisedBy: string(model.RaisedBy),
		Reason:   model.Reason,
		RaisedAt: model.RaisedAt,
	}
	_, err := s.db.Model(row).
		OnConflict("(group_id) DO UPDATE").
		Set("raised_by = EXCLUDED.raised_by").
		Set("reason = EXCLUDED.reason").
		Set("raised_at = EXCLUDED.raised_at").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to upsert dispute %v", row)
	}
	return nil
}

func (s *DisputeStorage) Get(groupID uint64) (*rosca.Dispute, error) {
	row := &DisputeSchema{}
	err := s.db.Model(row).Where("group_id = ?", groupID).Select()
	if err == pg.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select dispute of group %d", groupID)
	}
	return &rosca.Dispute{
		GroupID:  row.GroupID,
		RaisedBy: rosca.Address(row.RaisedBy),
		Reason:   row.Reason,
		RaisedAt: row.RaisedAt,
	}, nil
}

func (s *DisputeStorage) Remove(groupID uint64) error {
	_, err := s.db.Model(&DisputeSchema{}).
		Where("group_id = ?", groupID).
		Delete()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to delete dispute of group %d", groupID)
	}
	return nil
}
