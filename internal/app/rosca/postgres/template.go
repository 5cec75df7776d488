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

type TemplateSchema struct {
	tableName struct{} `sql:"templates"`

	Owner              string `sql:"owner,pk"`
	TemplateID         int64  `sql:"template_id,pk"`
	Name               string
	Token              string
	ContributionAmount int64
	DepositAmount      int64 `sql:",notnull"`
	CycleLength        int64
	MaxMembers         int64
}

func NewTemplateStorage(obs *observability.Observability, db orm.DB) *TemplateStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_template_storage_error_counter",
		Help: "",
	})
	return &TemplateStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type TemplateStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *TemplateStorage) Save(model *rosca.Template) error {
	row := &TemplateSchema{
		Owner:              string(model.Owner),
		TemplateID:         int64(model.ID),
		Name:               model.Name,
		Token:              string(model.Token),
		ContributionAmount: model.ContributionAmount,
		DepositAmount:      model.DepositAmount,
		CycleLength:        int64(model.CycleLength),
		MaxMembers:         int64(model.MaxMembers),
	}
	if err := s.db.Insert(row); err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert template %v", row)
	}
	return nil
}

func (s *TemplateStorage) Get(owner rosca.Address, templateID uint32) (*rosca.Template, error) {
	row := &TemplateSchema{}
	err := s.db.Model(row).
		Where("owner = ?", string(owner)).
		Where("template_id = ?", int64(templateID)).
		Select()
	if err == pg.ErrNoRows {
		return nil, rosca.ErrTemplateNotFound
	}
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select template %d of %s", templateID, owner)
	}
	return &rosca.Template{
		Owner:              rosca.Address(row.Owner),
		ID:                 uint32(row.TemplateID),
		Name:               row.Name,
		Token:              rosca.Address(row.Token),
		ContributionAmount: row.ContributionAmount,
		DepositAmount:      row.DepositAmount,
		CycleLength:        uint64(row.CycleLength),
		MaxMembers:         uint32(row.MaxMembers),
	}, nil
}

func (s *TemplateStorage) Count(owner rosca.Address) (uint32, error) {
	count, err := s.db.Model(&TemplateSchema{}).
		Where("owner = ?", string(owner)).
		Count()
	if err != nil {
		s.errorCounter.Inc()
		return 0, errors.Wrapf(err, "failed to count templates of %s", owner)
	}
	return uint32(count), nil
}
