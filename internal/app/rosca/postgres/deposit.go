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
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

type DepositSchema struct {
	tableName struct{} `sql:"deposits"`

	GroupID uint64 `sql:"group_id,pk"`
	Member  string `sql:"member,pk"`
	Amount  int64  `sql:",notnull"`
}

func NewDepositStorage(obs *observability.Observability, db orm.DB) *DepositStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_deposit_storage_error_counter",
		Help: "",
	})
	return &DepositStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type DepositStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *DepositStorage) Set(groupID uint64, member rosca.Address, amount int64) error {
	row := &DepositSchema{GroupID: groupID, Member: string(member), Amount: amount}
	_, err := s.db.Model(row).
		OnConflict("(group_id, member) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to upsert deposit %v", row)
	}
	return nil
}

func (s *DepositStorage) Remove(groupID uint64, member rosca.Address) error {
	_, err := s.db.Model(&DepositSchema{}).
		Where("group_id = ?", groupID).
		Where("member = ?", string(member)).
		Delete()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to delete deposit %s/%d", member, groupID)
	}
	return nil
}

func (s *DepositStorage) All(groupID uint64) (map[rosca.Address]int64, error) {
	var rows []DepositSchema
	err := s.db.Model(&rows).Where("group_id = ?", groupID).Select()
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select deposits of group %d", groupID)
	}
	deposits := make(map[rosca.Address]int64, len(rows))
	for _, row := range rows {
		deposits[rosca.Address(row.Member)] = row.Amount
	}
	return deposits, nil
}
