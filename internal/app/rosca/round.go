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

// Round is one contribution-and-payout cycle of a group, keyed by
// (GroupID, Number).
type Round struct {
	GroupID   uint64
	Number    uint32
	Recipient Address
	// Contributions marks which members have paid in this round. Keys are a
	// subset of the group members at round-open time.
	Contributions    map[Address]bool
	TotalContributed int64
	IsComplete       bool
	// Deadline is open time + cycle length, unix seconds. Advisory only.
	Deadline int64
}

func (r *Round) HasContributed(member Address) bool {
	return r.Contributions[member]
}

// Dispute is the single live dispute record of a group. Its existence is
// kept consistent with GroupStatus == StatusDisputed.
type Dispute struct {
	GroupID  uint64
	RaisedBy Address
	Reason   string
	RaisedAt int64
}

// Template is a saved group configuration for quick re-creation, owned and
// counted per admin.
type Template struct {
	Owner              Address
	ID                 uint32
	Name               string
	Token              Address
	ContributionAmount int64
	DepositAmount      int64
	CycleLength        uint64
	MaxMembers         uint32
}
