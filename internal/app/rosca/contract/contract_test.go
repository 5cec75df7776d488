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

package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorosave-protocol/contracts/configuration"
	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/contract"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/memstore"
	"github.com/sorosave-protocol/contracts/observability"
)

const (
	token = rosca.Address("USDC")

	protoAdmin = rosca.Address("GPROTO")
	alice      = rosca.Address("GALICE")
	bob        = rosca.Address("GBOB")
	carol      = rosca.Address("GCAROL")
	mallory    = rosca.Address("GMALLORY")
)

type callerKey struct{}

// as builds a context authenticated as caller.
func as(caller rosca.Address) context.Context {
	return context.WithValue(context.Background(), callerKey{}, caller)
}

type callerAuth struct{}

func (callerAuth) RequireAuth(ctx context.Context, principal rosca.Address) error {
	caller, ok := ctx.Value(callerKey{}).(rosca.Address)
	if !ok || caller != principal {
		return rosca.ErrUnauthorized
	}
	return nil
}

type fixedClock struct {
	now int64
}

func (c *fixedClock) Now() time.Time {
	return time.Unix(c.now, 0)
}

type fixture struct {
	contract *contract.Contract
	store    *memstore.Store
	clock    *fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	clock := &fixedClock{now: 1700000000}
	obs := observability.Make(configuration.Default())
	c := contract.New(obs, store, callerAuth{}, clock)
	for _, account := range []rosca.Address{alice, bob, carol, mallory} {
		store.Mint(token, account, 10_000)
	}
	return &fixture{contract: c, store: store, clock: clock}
}

func defaultParams() contract.GroupParams {
	return contract.GroupParams{
		Name:               "lunch club",
		Token:              token,
		ContributionAmount: 100,
		DepositAmount:      50,
		CycleLength:        604800,
		MaxMembers:         3,
	}
}

// createGroup is a shorthand for a successful CreateGroup by alice.
func (f *fixture) createGroup(t *testing.T, params contract.GroupParams) uint64 {
	t.Helper()
	groupID, err := f.contract.CreateGroup(as(alice), alice, params)
	require.NoError(t, err)
	return groupID
}

// activeGroup creates a three-member group and starts it.
func (f *fixture) activeGroup(t *testing.T) uint64 {
	t.Helper()
	groupID := f.createGroup(t, defaultParams())
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))
	require.NoError(t, f.contract.JoinGroup(as(carol), carol, groupID))
	require.NoError(t, f.contract.StartGroup(as(alice), alice, groupID))
	return groupID
}

// contributeAll pays everyone's share into the current round.
func (f *fixture) contributeAll(t *testing.T, groupID uint64) {
	t.Helper()
	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	for _, member := range group.Members {
		require.NoError(t, f.contract.Contribute(as(member), member, groupID))
	}
}

// totalSupply sums every balance the fixture knows about, pool included.
func (f *fixture) totalSupply() int64 {
	var total int64
	for _, account := range []rosca.Address{alice, bob, carol, mallory, protoAdmin, contract.PoolAccount} {
		total += f.store.Balance(token, account)
	}
	return total
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	err := f.contract.Initialize(as(protoAdmin), protoAdmin)
	require.NoError(t, err)

	err = f.contract.Initialize(as(protoAdmin), protoAdmin)
	require.Error(t, err)
	assert.Equal(t, rosca.CodeAlreadyInitialized, rosca.Code(err))
}

func TestInitialize_Unauthorized(t *testing.T) {
	f := newFixture(t)

	err := f.contract.Initialize(as(mallory), protoAdmin)
	require.Error(t, err)
	assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
}

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)

	groupID := f.createGroup(t, defaultParams())
	require.NotZero(t, groupID)

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusForming, group.Status)
	assert.Equal(t, alice, group.Admin)
	assert.Equal(t, []rosca.Address{alice}, group.Members)
	assert.Empty(t, group.PayoutOrder)
	assert.Zero(t, group.CurrentRound)

	// admin's security deposit is already escrowed
	assert.Equal(t, int64(10_000-50), f.store.Balance(token, alice))
	assert.Equal(t, int64(50), f.store.Balance(token, contract.PoolAccount))

	deposits, err := f.contract.GetDeposits(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, map[rosca.Address]int64{alice: 50}, deposits)

	groups, err := f.contract.GetMemberGroups(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{groupID}, groups)
}

func TestCreateGroup_Validation(t *testing.T) {
	f := newFixture(t)

	t.Run("zero contribution", func(t *testing.T) {
		params := defaultParams()
		params.ContributionAmount = 0
		_, err := f.contract.CreateGroup(as(alice), alice, params)
		assert.Equal(t, rosca.CodeInvalidAmount, rosca.Code(err))
	})

	t.Run("negative deposit", func(t *testing.T) {
		params := defaultParams()
		params.DepositAmount = -1
		_, err := f.contract.CreateGroup(as(alice), alice, params)
		assert.Equal(t, rosca.CodeInvalidAmount, rosca.Code(err))
	})

	t.Run("max members below two", func(t *testing.T) {
		params := defaultParams()
		params.MaxMembers = 1
		_, err := f.contract.CreateGroup(as(alice), alice, params)
		assert.Equal(t, rosca.CodeInsufficientMembers, rosca.Code(err))
	})
}

func TestCreateGroup_SequentialIDs(t *testing.T) {
	f := newFixture(t)

	first := f.createGroup(t, defaultParams())
	second := f.createGroup(t, defaultParams())
	assert.Equal(t, first+1, second)
}

func TestJoinGroup(t *testing.T) {
	f := newFixture(t)
	groupID := f.createGroup(t, defaultParams())

	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, []rosca.Address{alice, bob}, group.Members)
	assert.Equal(t, int64(10_000-50), f.store.Balance(token, bob))

	t.Run("twice", func(t *testing.T) {
		err := f.contract.JoinGroup(as(bob), bob, groupID)
		assert.Equal(t, rosca.CodeAlreadyMember, rosca.Code(err))
	})

	t.Run("full", func(t *testing.T) {
		require.NoError(t, f.contract.JoinGroup(as(carol), carol, groupID))
		err := f.contract.JoinGroup(as(mallory), mallory, groupID)
		assert.Equal(t, rosca.CodeGroupFull, rosca.Code(err))
	})

	t.Run("unknown group", func(t *testing.T) {
		err := f.contract.JoinGroup(as(bob), bob, groupID+100)
		assert.Equal(t, rosca.CodeGroupNotFound, rosca.Code(err))
	})
}

func TestJoinGroup_NotForming(t *testing.T) {
	f := newFixture(t)
	groupID := f.createGroup(t, contract.GroupParams{
		Name:               "duo",
		Token:              token,
		ContributionAmount: 100,
		CycleLength:        100,
		MaxMembers:         3,
	})
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))
	require.NoError(t, f.contract.StartGroup(as(alice), alice, groupID))

	err := f.contract.JoinGroup(as(carol), carol, groupID)
	assert.Equal(t, rosca.CodeGroupNotForming, rosca.Code(err))
}

func TestLeaveGroup(t *testing.T) {
	f := newFixture(t)
	groupID := f.createGroup(t, defaultParams())
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))

	require.NoError(t, f.contract.LeaveGroup(as(bob), bob, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, []rosca.Address{alice}, group.Members)
	// deposit came back
	assert.Equal(t, int64(10_000), f.store.Balance(token, bob))

	groups, err := f.contract.GetMemberGroups(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, groups)

	t.Run("admin cannot leave", func(t *testing.T) {
		err := f.contract.LeaveGroup(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	t.Run("not a member", func(t *testing.T) {
		err := f.contract.LeaveGroup(as(carol), carol, groupID)
		assert.Equal(t, rosca.CodeNotMember, rosca.Code(err))
	})
}

func TestStartGroup(t *testing.T) {
	f := newFixture(t)
	groupID := f.createGroup(t, defaultParams())

	t.Run("too few members", func(t *testing.T) {
		err := f.contract.StartGroup(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeInsufficientMembers, rosca.Code(err))
	})

	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))
	require.NoError(t, f.contract.JoinGroup(as(carol), carol, groupID))

	t.Run("not the admin", func(t *testing.T) {
		err := f.contract.StartGroup(as(bob), bob, groupID)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	require.NoError(t, f.contract.StartGroup(as(alice), alice, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusActive, group.Status)
	// payout order is the join order, fixed from now on
	assert.Equal(t, []rosca.Address{alice, bob, carol}, group.PayoutOrder)
	assert.Equal(t, uint32(3), group.TotalRounds)
	assert.Equal(t, uint32(1), group.CurrentRound)

	round, err := f.contract.GetRoundStatus(context.Background(), groupID, 1)
	require.NoError(t, err)
	assert.Equal(t, alice, round.Recipient)
	assert.False(t, round.IsComplete)
	assert.Equal(t, f.clock.now+604800, round.Deadline)

	t.Run("twice", func(t *testing.T) {
		err := f.contract.StartGroup(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeGroupNotForming, rosca.Code(err))
	})
}

func TestContribute(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	require.NoError(t, f.contract.Contribute(as(bob), bob, groupID))

	paid, err := f.contract.HasContributed(context.Background(), bob, groupID, 1)
	require.NoError(t, err)
	assert.True(t, paid)

	t.Run("twice in one round", func(t *testing.T) {
		err := f.contract.Contribute(as(bob), bob, groupID)
		assert.Equal(t, rosca.CodeAlreadyContributed, rosca.Code(err))
	})

	t.Run("not a member", func(t *testing.T) {
		err := f.contract.Contribute(as(mallory), mallory, groupID)
		assert.Equal(t, rosca.CodeNotMember, rosca.Code(err))
	})

	round, err := f.contract.GetRoundStatus(context.Background(), groupID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), round.TotalContributed)
	assert.False(t, round.IsComplete)

	require.NoError(t, f.contract.Contribute(as(alice), alice, groupID))
	require.NoError(t, f.contract.Contribute(as(carol), carol, groupID))

	round, err = f.contract.GetRoundStatus(context.Background(), groupID, 1)
	require.NoError(t, err)
	assert.True(t, round.IsComplete)
	assert.Equal(t, int64(300), round.TotalContributed)
}

func TestContribute_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	// drain bob below the contribution amount
	f.store.Mint(token, bob, -(f.store.Balance(token, bob) - 10))

	err := f.contract.Contribute(as(bob), bob, groupID)
	require.Error(t, err)

	paid, err := f.contract.HasContributed(context.Background(), bob, groupID, 1)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Equal(t, int64(10), f.store.Balance(token, bob))
}

func TestDistributePayout(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	t.Run("round still open", func(t *testing.T) {
		err := f.contract.DistributePayout(context.Background(), groupID)
		assert.Equal(t, rosca.CodeRoundNotComplete, rosca.Code(err))
	})

	f.contributeAll(t, groupID)
	aliceBefore := f.store.Balance(token, alice)

	// settlement needs no signer at all
	require.NoError(t, f.contract.DistributePayout(context.Background(), groupID))

	assert.Equal(t, aliceBefore+300, f.store.Balance(token, alice))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusActive, group.Status)
	assert.Equal(t, uint32(2), group.CurrentRound)

	round, err := f.contract.GetRoundStatus(context.Background(), groupID, 2)
	require.NoError(t, err)
	assert.Equal(t, bob, round.Recipient)
	assert.False(t, round.IsComplete)

	t.Run("settle twice", func(t *testing.T) {
		err := f.contract.DistributePayout(context.Background(), groupID)
		assert.Equal(t, rosca.CodeRoundNotComplete, rosca.Code(err))
	})
}

func TestDistributePayout_CompletesGroup(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	for i := 0; i < 3; i++ {
		f.contributeAll(t, groupID)
		require.NoError(t, f.contract.DistributePayout(context.Background(), groupID))
	}

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusCompleted, group.Status)

	// every member got one pot and their deposit back: net zero
	for _, member := range []rosca.Address{alice, bob, carol} {
		assert.Equal(t, int64(10_000), f.store.Balance(token, member), member)
	}
	assert.Zero(t, f.store.Balance(token, contract.PoolAccount))

	deposits, err := f.contract.GetDeposits(context.Background(), groupID)
	require.NoError(t, err)
	assert.Empty(t, deposits)

	t.Run("completed group rejects calls", func(t *testing.T) {
		err := f.contract.Contribute(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))

		err = f.contract.DistributePayout(context.Background(), groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))
	})
}

func TestFullCycle_TwoMembers(t *testing.T) {
	f := newFixture(t)
	f.store.Mint(token, alice, 1_000_000)
	f.store.Mint(token, bob, 1_000_000)

	groupID := f.createGroup(t, contract.GroupParams{
		Name:               "duo",
		Token:              token,
		ContributionAmount: 500_000,
		CycleLength:        86400,
		MaxMembers:         2,
	})
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))
	require.NoError(t, f.contract.StartGroup(as(alice), alice, groupID))

	supplyBefore := f.totalSupply()

	for round := uint32(1); round <= 2; round++ {
		require.NoError(t, f.contract.Contribute(as(alice), alice, groupID))
		require.NoError(t, f.contract.Contribute(as(bob), bob, groupID))
		require.NoError(t, f.contract.DistributePayout(context.Background(), groupID))
	}

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusCompleted, group.Status)

	// alice received round 1, bob round 2; both are exactly even
	assert.Equal(t, int64(1_010_000), f.store.Balance(token, alice))
	assert.Equal(t, int64(1_010_000), f.store.Balance(token, bob))
	assert.Equal(t, supplyBefore, f.totalSupply())
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	t.Run("stranger cannot pause", func(t *testing.T) {
		err := f.contract.PauseGroup(as(mallory), mallory, groupID)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	require.NoError(t, f.contract.PauseGroup(as(alice), alice, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusPaused, group.Status)

	t.Run("paused group rejects contributions", func(t *testing.T) {
		err := f.contract.Contribute(as(bob), bob, groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))
	})

	require.NoError(t, f.contract.ResumeGroup(as(alice), alice, groupID))
	require.NoError(t, f.contract.Contribute(as(bob), bob, groupID))

	t.Run("resume an active group", func(t *testing.T) {
		err := f.contract.ResumeGroup(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))
	})
}

func TestPause_ByProtocolAdmin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contract.Initialize(as(protoAdmin), protoAdmin))
	groupID := f.activeGroup(t)

	require.NoError(t, f.contract.PauseGroup(as(protoAdmin), protoAdmin, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusPaused, group.Status)
}

func TestDisputes(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	t.Run("stranger cannot dispute", func(t *testing.T) {
		err := f.contract.RaiseDispute(as(mallory), mallory, groupID, "bad faith")
		assert.Equal(t, rosca.CodeNotMember, rosca.Code(err))
	})

	require.NoError(t, f.contract.RaiseDispute(as(bob), bob, groupID, "missed payout"))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusDisputed, group.Status)

	dispute, err := f.contract.GetDispute(context.Background(), groupID)
	require.NoError(t, err)
	require.NotNil(t, dispute)
	assert.Equal(t, bob, dispute.RaisedBy)
	assert.Equal(t, "missed payout", dispute.Reason)
	assert.Equal(t, f.clock.now, dispute.RaisedAt)

	t.Run("disputed group is frozen", func(t *testing.T) {
		err := f.contract.Contribute(as(carol), carol, groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))

		err = f.contract.RaiseDispute(as(carol), carol, groupID, "another")
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))
	})

	t.Run("member cannot resolve", func(t *testing.T) {
		err := f.contract.ResolveDispute(as(bob), bob, groupID)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	require.NoError(t, f.contract.ResolveDispute(as(alice), alice, groupID))

	group, err = f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusActive, group.Status)

	dispute, err = f.contract.GetDispute(context.Background(), groupID)
	require.NoError(t, err)
	assert.Nil(t, dispute)

	t.Run("resolve without dispute", func(t *testing.T) {
		err := f.contract.ResolveDispute(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeGroupNotActive, rosca.Code(err))
	})
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contract.Initialize(as(protoAdmin), protoAdmin))
	groupID := f.activeGroup(t)

	// one settled round plus two stuck contributions in round 2
	f.contributeAll(t, groupID)
	require.NoError(t, f.contract.DistributePayout(context.Background(), groupID))
	require.NoError(t, f.contract.Contribute(as(alice), alice, groupID))
	require.NoError(t, f.contract.Contribute(as(bob), bob, groupID))

	t.Run("group admin is not enough", func(t *testing.T) {
		err := f.contract.EmergencyWithdraw(as(alice), alice, groupID)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	supplyBefore := f.totalSupply()
	balancesBefore := map[rosca.Address]int64{}
	for _, member := range []rosca.Address{alice, bob, carol} {
		balancesBefore[member] = f.store.Balance(token, member)
	}

	require.NoError(t, f.contract.EmergencyWithdraw(as(protoAdmin), protoAdmin, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusCompleted, group.Status)

	// pool held 3*50 deposits + 200 stuck contributions. Deposits are
	// forfeited; the 200 splits into 66 per member, remainder 2 stays.
	for _, member := range []rosca.Address{alice, bob, carol} {
		assert.Equal(t, balancesBefore[member]+66, f.store.Balance(token, member), member)
	}
	assert.Equal(t, int64(150+2), f.store.Balance(token, contract.PoolAccount))
	assert.Equal(t, supplyBefore, f.totalSupply())

	t.Run("already completed", func(t *testing.T) {
		err := f.contract.EmergencyWithdraw(as(protoAdmin), protoAdmin, groupID)
		assert.Equal(t, rosca.CodeGroupCompleted, rosca.Code(err))
	})
}

func TestEmergencyWithdraw_FormingGroup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contract.Initialize(as(protoAdmin), protoAdmin))
	groupID := f.createGroup(t, defaultParams())
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))

	require.NoError(t, f.contract.EmergencyWithdraw(as(protoAdmin), protoAdmin, groupID))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, rosca.StatusCompleted, group.Status)

	// only deposits on the pool, nothing distributable
	assert.Equal(t, int64(100), f.store.Balance(token, contract.PoolAccount))
}

func TestSetGroupAdmin(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	t.Run("not the admin", func(t *testing.T) {
		err := f.contract.SetGroupAdmin(as(bob), bob, groupID, bob)
		assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	})

	require.NoError(t, f.contract.SetGroupAdmin(as(alice), alice, groupID, bob))

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, bob, group.Admin)

	// the old admin lost the role
	err = f.contract.PauseGroup(as(alice), alice, groupID)
	assert.Equal(t, rosca.CodeUnauthorized, rosca.Code(err))
	require.NoError(t, f.contract.PauseGroup(as(bob), bob, groupID))
}

func TestSetGroupAdmin_CompletedGroup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contract.Initialize(as(protoAdmin), protoAdmin))
	groupID := f.activeGroup(t)
	require.NoError(t, f.contract.EmergencyWithdraw(as(protoAdmin), protoAdmin, groupID))

	err := f.contract.SetGroupAdmin(as(alice), alice, groupID, bob)
	assert.Equal(t, rosca.CodeGroupCompleted, rosca.Code(err))
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)

	templateID, err := f.contract.SaveTemplate(as(alice), alice, defaultParams())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), templateID)

	template, err := f.contract.GetTemplate(context.Background(), alice, templateID)
	require.NoError(t, err)
	assert.Equal(t, "lunch club", template.Name)
	assert.Equal(t, int64(100), template.ContributionAmount)

	t.Run("unknown template", func(t *testing.T) {
		_, err := f.contract.GetTemplate(context.Background(), alice, 42)
		assert.Equal(t, rosca.CodeTemplateNotFound, rosca.Code(err))
	})

	t.Run("create from template", func(t *testing.T) {
		groupID, err := f.contract.CreateFromTemplate(as(alice), alice, templateID, "round two")
		require.NoError(t, err)

		group, err := f.contract.GetGroup(context.Background(), groupID)
		require.NoError(t, err)
		assert.Equal(t, "round two", group.Name)
		assert.Equal(t, int64(100), group.ContributionAmount)
		assert.Equal(t, uint32(3), group.MaxMembers)
	})

	t.Run("per-owner limit", func(t *testing.T) {
		for i := 1; i < contract.MaxTemplatesPerAdmin; i++ {
			_, err := f.contract.SaveTemplate(as(alice), alice, defaultParams())
			require.NoError(t, err)
		}
		_, err := f.contract.SaveTemplate(as(alice), alice, defaultParams())
		assert.Equal(t, rosca.CodeTemplateLimitReached, rosca.Code(err))

		// the cap is per owner
		_, err = f.contract.SaveTemplate(as(bob), bob, defaultParams())
		require.NoError(t, err)
	})
}

func TestGroupEvents(t *testing.T) {
	f := newFixture(t)
	groupID := f.createGroup(t, defaultParams())
	require.NoError(t, f.contract.JoinGroup(as(bob), bob, groupID))
	require.NoError(t, f.contract.StartGroup(as(alice), alice, groupID))
	require.NoError(t, f.contract.Contribute(as(bob), bob, groupID))

	events, err := f.contract.GetGroupEvents(context.Background(), groupID)
	require.NoError(t, err)

	kinds := make([]rosca.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, f.clock.now, e.Timestamp)
	}
	assert.Equal(t, []rosca.EventKind{
		rosca.EventGroupCreated,
		rosca.EventMemberJoined,
		rosca.EventGroupStarted,
		rosca.EventContribution,
	}, kinds)

	contrib := events[len(events)-1]
	assert.Equal(t, bob, contrib.Member)
	assert.Equal(t, int64(100), contrib.Amount)
	assert.Equal(t, uint32(1), contrib.Round)

	t.Run("unknown group", func(t *testing.T) {
		_, err := f.contract.GetGroupEvents(context.Background(), groupID+100)
		assert.Equal(t, rosca.CodeGroupNotFound, rosca.Code(err))
	})
}

func TestGetCurrentRecipient(t *testing.T) {
	f := newFixture(t)
	groupID := f.activeGroup(t)

	recipient, err := f.contract.GetCurrentRecipient(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, alice, recipient)

	f.contributeAll(t, groupID)
	require.NoError(t, f.contract.DistributePayout(context.Background(), groupID))

	recipient, err = f.contract.GetCurrentRecipient(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, bob, recipient)
}

func TestFailedCall_LeavesNoState(t *testing.T) {
	f := newFixture(t)
	f.store.Mint(token, "GPENNILESS", 0)
	groupID := f.createGroup(t, defaultParams())

	// join fails on the deposit transfer, so the member list, the reverse
	// index and the escrow all stay untouched
	err := f.contract.JoinGroup(as("GPENNILESS"), "GPENNILESS", groupID)
	require.Error(t, err)

	group, err := f.contract.GetGroup(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, []rosca.Address{alice}, group.Members)

	groups, err := f.contract.GetMemberGroups(context.Background(), "GPENNILESS")
	require.NoError(t, err)
	assert.Empty(t, groups)

	deposits, err := f.contract.GetDeposits(context.Background(), groupID)
	require.NoError(t, err)
	assert.Equal(t, map[rosca.Address]int64{alice: 50}, deposits)
}
