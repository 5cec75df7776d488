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

package memstore_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/memstore"
)

func newGroup() *rosca.Group {
	return &rosca.Group{
		Name:               "demo",
		Admin:              "GADMIN",
		Token:              "USDC",
		ContributionAmount: 100,
		MaxMembers:         4,
		Members:            []rosca.Address{"GADMIN"},
		Status:             rosca.StatusForming,
	}
}

func TestUpdate_AssignsSequentialIDs(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	var first, second uint64
	require.NoError(t, store.Update(ctx, 0, func(tx rosca.Tx) error {
		g := newGroup()
		if err := tx.Groups().Insert(g); err != nil {
			return err
		}
		first = g.ID
		return nil
	}))
	require.NoError(t, store.Update(ctx, 0, func(tx rosca.Tx) error {
		g := newGroup()
		if err := tx.Groups().Insert(g); err != nil {
			return err
		}
		second = g.ID
		return nil
	}))

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Update(ctx, 0, func(tx rosca.Tx) error {
		if err := tx.Groups().Insert(newGroup()); err != nil {
			return err
		}
		if err := tx.Protocol().SetAdmin("GADMIN"); err != nil {
			return err
		}
		return boom
	})
	require.Equal(t, boom, err)

	// none of the writes survived
	require.NoError(t, store.View(ctx, func(tx rosca.Tx) error {
		_, err := tx.Groups().Get(1)
		assert.Equal(t, rosca.CodeGroupNotFound, rosca.Code(err))

		has, err := tx.Protocol().HasAdmin()
		require.NoError(t, err)
		assert.False(t, has)
		return nil
	}))
}

func TestUpdate_IsolatesReadCopies(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, 0, func(tx rosca.Tx) error {
		return tx.Groups().Insert(newGroup())
	}))

	// mutating a read result must not leak into the store
	require.NoError(t, store.View(ctx, func(tx rosca.Tx) error {
		g, err := tx.Groups().Get(1)
		require.NoError(t, err)
		g.Members = append(g.Members, "GSNEAKY")
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx rosca.Tx) error {
		g, err := tx.Groups().Get(1)
		require.NoError(t, err)
		assert.Equal(t, []rosca.Address{"GADMIN"}, g.Members)
		return nil
	}))
}

func TestTokenLedger(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	store.Mint("USDC", "GFROM", 100)

	t.Run("negative amount", func(t *testing.T) {
		err := store.Update(ctx, 0, func(tx rosca.Tx) error {
			return tx.Tokens().Transfer(ctx, "USDC", "GFROM", "GTO", -1)
		})
		assert.Equal(t, rosca.CodeInvalidAmount, rosca.Code(err))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		err := store.Update(ctx, 0, func(tx rosca.Tx) error {
			return tx.Tokens().Transfer(ctx, "USDC", "GFROM", "GTO", 101)
		})
		require.Error(t, err)
		assert.Equal(t, int64(100), store.Balance("USDC", "GFROM"))
		assert.Zero(t, store.Balance("USDC", "GTO"))
	})

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, 0, func(tx rosca.Tx) error {
			return tx.Tokens().Transfer(ctx, "USDC", "GFROM", "GTO", 60)
		}))
		assert.Equal(t, int64(40), store.Balance("USDC", "GFROM"))
		assert.Equal(t, int64(60), store.Balance("USDC", "GTO"))
	})
}

func TestRoundStorage_NotFound(t *testing.T) {
	store := memstore.New()

	err := store.View(context.Background(), func(tx rosca.Tx) error {
		_, err := tx.Rounds().Get(1, 1)
		return err
	})
	assert.Equal(t, rosca.CodeRoundNotActive, rosca.Code(err))
}

func TestTemplateStorage_NotFound(t *testing.T) {
	store := memstore.New()

	err := store.View(context.Background(), func(tx rosca.Tx) error {
		_, err := tx.Templates().Get("GOWNER", 1)
		return err
	})
	assert.Equal(t, rosca.CodeTemplateNotFound, rosca.Code(err))
}
