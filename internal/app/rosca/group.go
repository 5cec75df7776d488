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

package rosca

// Address names a principal or a token. Principals co-sign calls, tokens
// denominate pools.
type Address string

// GroupStatus is the lifecycle state of a savings group.
type GroupStatus string

const (
	StatusForming   GroupStatus = "forming"
	StatusActive    GroupStatus = "active"
	StatusCompleted GroupStatus = "completed"
	StatusDisputed  GroupStatus = "disputed"
	StatusPaused    GroupStatus = "paused"
)

// Group is a savings group: fixed configuration plus mutable lifecycle
// state. Members and PayoutOrder are contiguous, insertion-ordered slices;
// membership checks are linear scans over a small bounded set.
type Group struct {
	ID                 uint64
	Name               string
	Admin              Address
	Token              Address
	ContributionAmount int64
	DepositAmount      int64
	// CycleLength is how long a round stays open before it is eligible for
	// settlement, in seconds. Advisory: deadlines are never enforced.
	CycleLength uint64
	MaxMembers  uint32
	Members     []Address
	PayoutOrder []Address
	// CurrentRound is 0 before start, then 1..TotalRounds.
	CurrentRound uint32
	TotalRounds  uint32
	Status       GroupStatus
	CreatedAt    int64
}

func (g *Group) HasMember(member Address) bool {
	for _, m := range g.Members {
		if m == member {
			return true
		}
	}
	return false
}

// RemoveMember drops member keeping the relative order of the rest.
// Returns false if member was not present.
func (g *Group) RemoveMember(member Address) bool {
	for i, m := range g.Members {
		if m == member {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return true
		}
	}
	return false
}
