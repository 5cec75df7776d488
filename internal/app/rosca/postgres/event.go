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

type EventSchema struct {
	tableName struct{} `sql:"events"`

	Seq       int64  `sql:"seq,pk"`
	EventID   string `sql:"event_id,notnull"`
	Kind      string `sql:",notnull"`
	GroupID   uint64 `sql:"group_id,notnull"`
	Member    string `sql:",notnull"`
	Amount    int64  `sql:",notnull"`
	Round     int64 `sql:",notnull"`
	Timestamp int64 `sql:",notnull"`
}

func NewEventStorage(obs *observability.Observability, db orm.DB) *EventStorage {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_event_storage_error_counter",
		Help: "",
	})
	return &EventStorage{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

type EventStorage struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (s *EventStorage) Append(model *rosca.Event) error {
	row := &EventSchema{
		EventID:   model.ID,
		Kind:      string(model.Kind),
		GroupID:   model.GroupID,
		Member:    string(model.Member),
		Amount:    model.Amount,
		Round:     int64(model.Round),
		Timestamp: model.Timestamp,
	}
	if err := s.db.Insert(row); err != nil {
		s.errorCounter.Inc()
		return errors.Wrapf(err, "failed to insert event %v", row)
	}
	return nil
}

func (s *EventStorage) ListByGroup(groupID uint64) ([]rosca.Event, error) {
	var rows []EventSchema
	err := s.db.Model(&rows).
		Where("group_id = ?", groupID).
		Order("seq").
		Select()
	if err != nil {
		s.errorCounter.Inc()
		return nil, errors.Wrapf(err, "failed to select events of group %d", groupID)
	}
	events := make([]rosca.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, rosca.Event{
			ID:        row.EventID,
			Kind:      rosca.EventKind(row.Kind),
			GroupID:   row.GroupID,
			Member:    rosca.Address(row.Member),
			Amount:    row.Amount,
			Round:     uint32(row.Round),
			Timestamp: row.Timestamp,
		})
	}
	return events, nil
}
