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

// Package contract implements the ROSCA group lifecycle state machine:
// registry, round ledger, payout engine, deposit escrow and governance.
// Every mutating call runs inside one store transaction and either commits
// fully or leaves no state behind.
package contract

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

// PoolAccount is the escrow account all group funds sit on, the counterpart
// of the contract's own address on chain.
const PoolAccount = rosca.Address("sorosave.pool")

type Contract struct {
	store rosca.Store
	auth  rosca.Authorizer
	clock rosca.Clock
	log   *logrus.Logger

	metrics      *CallMetrics
	errorCounter prometheus.Counter
}

func New(obs *observability.Observability, store rosca.Store, auth rosca.Authorizer, clock rosca.Clock) *Contract {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_contract_error_counter",
		Help: "Number of failed contract calls.",
	})
	return &Contract{
		store:        store,
		auth:         auth,
		clock:        clock,
		log:          obs.Log(),
		metrics:      MakeCallMetrics(obs),
		errorCounter: errorCounter,
	}
}

// CallMetrics counts successful mutating calls, one counter per field.
type CallMetrics struct {
	Creates       prometheus.Counter
	Joins         prometheus.Counter
	Leaves        prometheus.Counter
	Starts        prometheus.Counter
	Contributions prometheus.Counter
	Payouts       prometheus.Counter
	Pauses        prometheus.Counter
	Resumes       prometheus.Counter
	Disputes      prometheus.Counter
	Resolutions   prometheus.Counter
	Emergencies   prometheus.Counter
	AdminChanges  prometheus.Counter
	Templates     prometheus.Counter
}

func MakeCallMetrics(obs *observability.Observability) *CallMetrics {
	counters := &CallMetrics{}
	v := reflect.ValueOf(counters).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := strings.ToLower(t.Field(i).Name)
		opts := prometheus.CounterOpts{
			Name: fmt.Sprintf("sorosave_%s_total", field),
			Help: fmt.Sprintf("Number of %s successfully committed.", field),
		}
		v.Field(i).Set(reflect.ValueOf(obs.Counter(opts)))
	}
	return counters
}

// Initialize sets the protocol admin. Callable once.
func (c *Contract) Initialize(ctx context.Context, admin rosca.Address) error {
	if err := c.auth.RequireAuth(ctx, admin); err != nil {
		return c.failed(err)
	}
	err := c.store.Update(ctx, 0, func(tx rosca.Tx) error {
		has, err := tx.Protocol().HasAdmin()
		if err != nil {
			return err
		}
		if has {
			return rosca.ErrAlreadyInitialized
		}
		return tx.Protocol().SetAdmin(admin)
	})
	if err != nil {
		return c.failed(err)
	}
	c.log.WithField("protocol_admin", admin).Info("protocol initialized")
	return nil
}

// now returns the current unix timestamp of the contract clock.
func (c *Contract) now() int64 {
	return c.clock.Now().Unix()
}

func (c *Contract) emit(tx rosca.Tx, event *rosca.Event) error {
	event.ID = uuid.New().String()
	event.Timestamp = c.now()
	return tx.Events().Append(event)
}

// failed counts and passes through a call failure.
func (c *Contract) failed(err error) error {
	c.errorCounter.Inc()
	return err
}

// isProtocolAdmin reports whether caller is the protocol-level admin.
func isProtocolAdmin(tx rosca.Tx, caller rosca.Address) (bool, error) {
	admin, err := tx.Protocol().Admin()
	if err != nil {
		if rosca.Code(err) == rosca.CodeNotInitialized {
			return false, nil
		}
		return false, err
	}
	return caller == admin, nil
}
