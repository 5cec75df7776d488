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

// EventKind tags an append-only event record. The short symbols match the
// on-chain event names, so off-chain indexers see a stable vocabulary.
type EventKind string

const (
	EventGroupCreated    EventKind = "grp_creat"
	EventMemberJoined    EventKind = "grp_join"
	EventMemberLeft      EventKind = "grp_leav"
	EventGroupStarted    EventKind = "grp_strt"
	EventContribution    EventKind = "contrib"
	EventPayout          EventKind = "payout"
	EventNewRound        EventKind = "rnd_new"
	EventGroupCompleted  EventKind = "grp_comp"
	EventGroupPaused     EventKind = "grp_paus"
	EventGroupResumed    EventKind = "grp_resm"
	EventDisputeRaised   EventKind = "dispute"
	EventDisputeResolved EventKind = "resolved"
	EventEmergency       EventKind = "emergenc"
	EventAdminChanged    EventKind = "adm_chng"
	EventTemplateSaved   EventKind = "tmpl_save"
)

// Event is one immutable record of the write-only side channel. Events are
// never read back by the contract itself.
type Event struct {
	ID        string
	Kind      EventKind
	GroupID   uint64
	Member    Address
	Amount    int64
	Round     uint32
	Timestamp int64
}
