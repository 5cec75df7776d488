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

package dbconn

import (
	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/configuration"
	"github.com/sorosave-protocol/contracts/internal/pkg/cycle"
)

func Connect(cfg configuration.DB) (*pg.DB, error) {
	opt, err := pg.ParseURL(cfg.URL)
	if err != nil {
		// pg.ParseURL uses standard url.Parse
		// which fills the url-string with password into error.
		// So we can't use errors.Wrap here and print the error above in code.
		return nil, errors.New("failed to parse cfg.DB.URL")
	}
	opt.PoolSize = cfg.PoolSize
	return pg.Connect(opt), nil
}

// ConnectAndCheck connects and waits for the database to answer, retrying
// connection-level failures cfg.Attempts times.
func ConnectAndCheck(cfg configuration.DB, log *logrus.Logger) (*pg.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	cycle.UntilConnectionError(func() error {
		_, err := db.Exec("select 1")
		return err
	}, cfg.AttemptInterval, cfg.Attempts, log)
	return db, nil
}
