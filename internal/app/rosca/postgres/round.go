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
	"sort"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

type RoundSchema struct {
	tableName struct{} `sql:"rounds"`

	GroupID          uint64 `sql:"group_id,pk"`
	Number           int64  `sql:"number,pk"`
	Recipient        string
	Contributors     []string `sql:",notnull,array"`
	TotalContributed int64    `sql:",notnull"`
	IsComplete       bool     `sql:",notnull"`
	Deadline         int64
}

func NewRoundStorage(obs *observability.Observability, db orm.DB) *RoundStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_round_storage_error_counter",
		Help: "",
	})
	return &RoundStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type RoundStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *RoundStorage) Set(model *rosca.Round) error {
	row := roundSchema(model)
	_, err := s.db.Model(row).
		OnConflict("(group_id, number) DO UPDATE").
		Set("recipient = EXCLUDED.recipient").
		Set("contributors = EXCLUDED.contributors").
		Set("total_contributed = EXCLUDED.total_contributed").
		Set("is_complete = EXCLUDED.is_complete").
		Set("deadline = EXCLUDED.deadline").
		Insert()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to upsert round %v", row)
	}
	return nil
}

func (s *RoundStorage) Get(groupID uint64, number uint32) (*rosca.Round, error) {
	row := &RoundSchema{}
	err := s.db.Model(row).
		Where("group_id = ?", groupID).
		Where("number = ?", int64(number)).
		Select()
	if err == pg.ErrNoRows {
		return nil, rosca.ErrRoundNotActive
	}
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select round %d of group %d", number, groupID)
	}
	return roundModel(row), nil
}

func roundSchema(model *rosca.Round) *RoundSchema {
	contributors := make([]string, 0, len(model.Contributions))
	for member, paid := range model.Contributions {
		if paid {
			contributors = append(contributors, string(member))
		}
	}
	sort.Strings(contributors)
	return &RoundSchema{
		GroupID:          model.GroupID,
		Number:           int64(model.Number),
		Recipient:        string(model.Recipient),
		Contributors:     contributors,
		TotalContributed: model.TotalContributed,
		IsComplete:       model.IsComplete,
		Deadline:         model.Deadline,
	}
}

func roundModel(row *RoundSchema) *rosca.Round {
	contributions := make(map[rosca.Address]bool, len(row.Contributors))
	for _, member := range row.Contributors {
		contributions[rosca.Address(member)] = true
	}
	return &rosca.Round{
		GroupID:          row.GroupID,
		Number:           uint32(row.Number),
		Recipient:        rosca.Address(row.Recipient),
		Contributions:    contributions,
		TotalContributed: row.TotalContributed,
		IsComplete:       row.IsComplete,
		Deadline:         row.Deadline,
	}
}
