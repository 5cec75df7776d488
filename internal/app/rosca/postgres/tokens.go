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
	"context"

	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/observability"
)

type TokenAccountSchema struct {
	tableName struct{} `sql:"token_accounts"`

	Token   string `sql:"token,pk"`
	Account string `sql:"account,pk"`
	Balance int64  `sql:",notnull"`
}

func NewTokenLedger(obs *observability.Observability, db orm.DB) *TokenLedger {
	errorCounter := obs.Counter(prometheus.CounterOpts{
		Name: "sorosave_token_ledger_error_counter",
		Help: "",
	})
	return &TokenLedger{
		log:          obs.Log(),
		errorCounter: errorCounter,
		db:           db,
	}
}

// TokenLedger keeps token balances in the same database as the contract
// state, so transfers commit or roll back together with the state change
// that caused them. The source row is locked before the balance check.
type TokenLedger struct {
	log          *logrus.Logger
	errorCounter prometheus.Counter
	db           orm.DB
}

func (l *TokenLedger) Transfer(ctx context.Context, token, from, to rosca.Address, amount int64) error {
	if amount < 0 {
		return rosca.ErrInvalidAmount
	}
	if amount == 0 || from == to {
		return nil
	}

	row := &TokenAccountSchema{}
	err := l.db.Model(row).
		Where("token = ?", string(token)).
		Where("account = ?", string(from)).
		For("UPDATE").
		Select()
	if err == pg.ErrNoRows {
		return errors.Errorf("account %s holds no %s", from, token)
	}
	if err != nil {
		l.errorCounter.Inc()
		return errors.Wrapf(err, "failed to lock account %s/%s", token, from)
	}
	if row.Balance < amount {
		return errors.Errorf("insufficient %s balance of %s: have %d, need %d",
			token, from, row.Balance, amount)
	}

	_, err = l.db.Model(&TokenAccountSchema{}).
		Set("balance = balance - ?", amount).
		Where("token = ?", string(token)).
		Where("account = ?", string(from)).
		Update()
	if err != nil {
		l.errorCounter.Inc()
		return errors.Wrapf(err, "failed to debit %s/%s", token, from)
	}

	credit := &TokenAccountSchema{Token: string(token), Account: string(to), Balance: amount}
	_, err = l.db.Model(credit).
		OnConflict("(token, account) DO UPDATE").
		Set("balance = ?TableAlias.balance + EXCLUDED.balance").
		Insert()
	if err != nil {
		l.errorCounter.Inc()
		return errors.Wrapf(err, "failed to credit %s/%s", token, to)
	}
	return nil
}

func (l *TokenLedger) Balance(ctx context.Context, token, account rosca.Address) (int64, error) {
	row := &TokenAccountSchema{}
	err := l.db.Model(row).
		Where("token = ?", string(token)).
		Where("account = ?", string(account)).
		Select()
	if err == pg.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		l.errorCounter.Inc()
		return 0, errors.Wrapf(err, "failed to select balance %s/%s", token, account)
	}
	return row.Balance, nil
}
