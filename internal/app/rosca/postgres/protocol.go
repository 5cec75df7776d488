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

// ProtocolSchema is a single-row table. The fixed id keeps initialization
// idempotent at the storage level.
type ProtocolSchema struct {
	tableName struct{} `sql:"protocol"`

	ID    int64  `sql:"id,pk"`
	Admin string `sql:",notnull"`
}

func NewProtocolStorage(obs *observability.Observability, db orm.DB) *ProtocolStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_protocol_storage_error_counter",
		Help: "",
	})
	return &ProtocolStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type ProtocolStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *ProtocolStorage) Admin() (rosca.Address, error) {
	row := &ProtocolSchema{}
	err := s.db.Model(row).Where("id = 1").Select()
	if err == pg.ErrNoRows {
		return "", rosca.ErrNotInitialized
	}
	if err != nil {
		s.errorCounter.Inc()
		return "", errors.Wrap(err, "failed to select protocol admin")
	}
	return rosca.Address(row.Admin), nil
}

func (s *ProtocolStorage) SetAdmin(admin rosca.Address) error {
	row := &ProtocolSchema{ID: 1, Admin: string(admin)}
	_, err := s.db.Model(row).
		OnConflict("(id) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrap(err, "failed to upsert protocol admin")
	}
	return nil
}

func (s *ProtocolStorage) HasAdmin() (bool, error) {
	count, err := s.db.Model(&ProtocolSchema{}).Where("id = 1").Count()
	if err != nil {
		s.errorCounter.Inc()
		return false, errors.Wrap(err, "failed to count protocol rows")
	}
	return count > 0, nil
}
