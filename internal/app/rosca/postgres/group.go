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

type GroupSchema struct {
	tableName struct{} `sql:"groups"`

	ID                 uint64 `sql:"id,pk"`
	Name               string
	Admin              string
	Token              string
	ContributionAmount int64
	DepositAmount      int64    `sql:",notnull"`
	CycleLength        int64
	MaxMembers         int64
	Members            []string `sql:",notnull,array"`
	PayoutOrder        []string `sql:",notnull,array"`
	CurrentRound       int64    `sql:",notnull"`
	TotalRounds        int64    `sql:",notnull"`
	Status             string
	CreatedAt          int64
}

type MemberGroupSchema struct {
	tableName struct{} `sql:"member_groups"`

	ID      int64  `sql:"id,pk"`
	Member  string `sql:",notnull"`
	GroupID uint64 `sql:",notnull"`
}

func NewGroupStorage(obs *observability.Observability, db orm.DB) *GroupStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_group_storage_error_counter",
		Help: "",
	})
	return &GroupStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type GroupStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *GroupStorage) Insert(model *rosca.Group) error {
	row := groupSchema(model)
	row.ID = 0 // assigned by the groups id sequence, monotonic and never reused
	if err := s.db.Insert(row); err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert group %v", row)
	}
	model.ID = row.ID
	return nil
}

func (s *GroupStorage) Get(groupID uint64) (*rosca.Group, error) {
	row := &GroupSchema{}
	err := s.db.Model(row).Where("id = ?", groupID).Select()
	if err == pg.ErrNoRows {
		return nil, rosca.ErrGroupNotFound
	}
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select group %d", groupID)
	}
	return groupModel(row), nil
}

func (s *GroupStorage) Update(model *rosca.Group) error {
	row := groupSchema(model)
	res, err := s.db.Model(row).WherePK().Update()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to update group %v", row)
	}
	if res.RowsAffected() == 0 {
		s.errorCounter.Inc()
		s.log.WithField("group_row", row).Errorf("failed to update group")
		return rosca.ErrGroupNotFound
	}
	return nil
}

func (s *GroupStorage) AddMemberGroup(member rosca.Address, groupID uint64) error {
	row := &MemberGroupSchema{Member: string(member), GroupID: groupID}
	if err := s.db.Insert(row); err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert member_group %v", row)
	}
	return nil
}

func (s *GroupStorage) RemoveMemberGroup(member rosca.Address, groupID uint64) error {
	_, err := s.db.Model(&MemberGroupSchema{}).
		Where("member = ?", string(member)).
		Where("group_id = ?", groupID).
		Delete()
	if err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to delete member_group %s/%d", member, groupID)
	}
	return nil
}

func (s *GroupStorage) MemberGroups(member rosca.Address) ([]uint64, error) {
	var rows []MemberGroupSchema
	err := s.db.Model(&rows).
		Where("member = ?", string(member)).
		Order("id").
		Select()
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select member_groups of %s", member)
	}
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.GroupID)
	}
	return ids, nil
}

func groupSchema(model *rosca.Group) *GroupSchema {
	return &GroupSchema{
		ID:                 model.ID,
		Name:               model.Name,
		Admin:              string(model.Admin),
		Token:              string(model.Token),
		ContributionAmount: model.ContributionAmount,
		DepositAmount:      model.DepositAmount,
		CycleLength:        int64(model.CycleLength),
		MaxMembers:         int64(model.MaxMembers),
		Members:            addressStrings(model.Members),
		PayoutOrder:        addressStrings(model.PayoutOrder),
		CurrentRound:       int64(model.CurrentRound),
		TotalRounds:        int64(model.TotalRounds),
		Status:             string(model.Status),
		CreatedAt:          model.CreatedAt,
	}
}

func groupModel(row *GroupSchema) *rosca.Group {
	return &rosca.Group{
		ID:                 row.ID,
		Name:               row.Name,
		Admin:              rosca.Address(row.Admin),
		Token:              rosca.Address(row.Token),
		ContributionAmount: row.ContributionAmount,
		DepositAmount:      row.DepositAmount,
		CycleLength:        uint64(row.CycleLength),
		MaxMembers:         uint32(row.MaxMembers),
		Members:            addresses(row.Members),
		PayoutOrder:        addresses(row.PayoutOrder),
		CurrentRound:       uint32(row.CurrentRound),
		TotalRounds:        uint32(row.TotalRounds),
		Status:             rosca.GroupStatus(row.Status),
		CreatedAt:          row.CreatedAt,
	}
}

func addressStrings(list []rosca.Address) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = string(a)
	}
	return out
}

func addresses(list []string) []rosca.Address {
	out := make([]rosca.Address, len(list))
	for i, a := range list {
		out[i] = rosca.Address(a)
	}
	return out
}
