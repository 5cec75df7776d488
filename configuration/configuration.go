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

package configuration

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/pkg/cycle"
)

type Configuration struct {
	Log Log
	API API
	DB  DB
}

type Log struct {
	Level  string
	Format string
}

type API struct {
	// Address the HTTP API listens on.
	Listen string
	// Number of group records kept in the read cache.
	GroupCacheSize int
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed connect attempts.
	AttemptInterval time.Duration
}

func Default() *Configuration {
	return &Configuration{
		Log: Log{
			Level:  logrus.InfoLevel.String(),
			Format: "text",
		},
		API: API{
			Listen:         ":8080",
			GroupCacheSize: 1024,
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        100,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
	}
}
