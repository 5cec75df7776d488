// Copyright 2025 SoroSave Protocol Ltd.
// All rights reserved.
// This material is licensed under the Apache License, Version 2.0,
// available at http://www.apache.org/licenses/LICENSE-2.0.

package cycle

import (
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Limit int

const (
	INFINITY Limit = math.MaxInt32
)

// UntilConnectionError retries f while it keeps failing with connection-level
// errors, up to attempts tries. Any other error panics immediately.
func UntilConnectionError(f func() error, interval time.Duration, attempts Limit, log *logrus.Logger) {
	counter := Limit(1)
	if attempts < 1 {
		attempts = 1
	}
	for {
		err := f()
		if err != nil {
			if (!strings.Contains(err.Error(), "connection") && !strings.Contains(err.Error(), "EOF")) || counter >= attempts {
				panic(err)
			}
			log.Errorf("Connection error, try again (attempt %d, totalAttempts %d) %+v", counter, attempts, err)
			counter++
			time.Sleep(interval)
			continue
		}
		return
	}
}
