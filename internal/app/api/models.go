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

package api

import (
	"sort"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

type InitializeRequest struct {
	Admin string `json:"admin"`
}

type CreateGroupRequest struct {
	Name               string `json:"name"`
	Token              string `json:"token"`
	ContributionAmount int64  `json:"contribution_amount"`
	DepositAmount      int64  `json:"deposit_amount"`
	CycleLength        uint64 `json:"cycle_length"`
	MaxMembers         uint32 `json:"max_members"`
}

type GroupCreatedResponse struct {
	GroupID uint64 `json:"group_id"`
}

type GroupResponse struct {
	ID                 uint64   `json:"id"`
	Name               string   `json:"name"`
	Admin              string   `json:"admin"`
	Token              string   `json:"token"`
	ContributionAmount int64    `json:"contribution_amount"`
	DepositAmount      int64    `json:"deposit_amount"`
	CycleLength        uint64   `json:"cycle_length"`
	MaxMembers         uint32   `json:"max_members"`
	Members            []string `json:"members"`
	PayoutOrder        []string `json:"payout_order"`
	CurrentRound       uint32   `json:"current_round"`
	TotalRounds        uint32   `json:"total_rounds"`
	Status             string   `json:"status"`
	CreatedAt          int64    `json:"created_at"`
}

type RoundResponse struct {
	GroupID          uint64   `json:"group_id"`
	Number           uint32   `json:"number"`
	Recipient        string   `json:"recipient"`
	Contributors     []string `json:"contributors"`
	TotalContributed int64    `json:"total_contributed"`
	IsComplete       bool     `json:"is_complete"`
	Deadline         int64    `json:"deadline"`
}

type ContributionResponse struct {
	Member      string `json:"member"`
	Round       uint32 `json:"round"`
	Contributed bool   `json:"contributed"`
}

type PayoutOrderResponse struct {
	PayoutOrder []string `json:"payout_order"`
}

type RecipientResponse struct {
	Recipient string `json:"recipient"`
	Round     uint32 `json:"round"`
}

type DisputeRequest struct {
	Reason string `json:"reason"`
}

type DisputeResponse struct {
	GroupID  uint64 `json:"group_id"`
	RaisedBy string `json:"raised_by"`
	Reason   string `json:"reason"`
	RaisedAt int64  `json:"raised_at"`
}

type SetAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type EventResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	GroupID   uint64 `json:"group_id"`
	Member    string `json:"member,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Round     uint32 `json:"round,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type DepositsResponse struct {
	Deposits map[string]int64 `json:"deposits"`
}

type MemberGroupsResponse struct {
	Groups []uint64 `json:"groups"`
}

type SaveTemplateRequest struct {
	Name               string `json:"name"`
	Token              string `json:"token"`
	ContributionAmount int64  `json:"contribution_amount"`
	DepositAmount      int64  `json:"deposit_amount"`
	CycleLength        uint64 `json:"cycle_length"`
	MaxMembers         uint32 `json:"max_members"`
}

type TemplateSavedResponse struct {
	TemplateID uint32 `json:"template_id"`
}

type TemplateResponse struct {
	Owner              string `json:"owner"`
	ID                 uint32 `json:"id"`
	Name               string `json:"name"`
	Token              string `json:"token"`
	ContributionAmount int64  `json:"contribution_amount"`
	DepositAmount      int64  `json:"deposit_amount"`
	CycleLength        uint64 `json:"cycle_length"`
	MaxMembers         uint32 `json:"max_members"`
}

type CreateFromTemplateRequest struct {
	TemplateID uint32 `json:"template_id"`
	Name       string `json:"name"`
}

func groupResponse(group *rosca.Group) GroupResponse {
	return GroupResponse{
		ID:                 group.ID,
		Name:               group.Name,
		Admin:              string(group.Admin),
		Token:              string(group.Token),
		ContributionAmount: group.ContributionAmount,
		DepositAmount:      group.DepositAmount,
		CycleLength:        group.CycleLength,
		MaxMembers:         group.MaxMembers,
		Members:            addressStrings(group.Members),
		PayoutOrder:        addressStrings(group.PayoutOrder),
		CurrentRound:       group.CurrentRound,
		TotalRounds:        group.TotalRounds,
		Status:             string(group.Status),
		CreatedAt:          group.CreatedAt,
	}
}

func roundResponse(round *rosca.Round) RoundResponse {
	contributors := make([]string, 0, len(round.Contributions))
	for member, paid := range round.Contributions {
		if paid {
			contributors = append(contributors, string(member))
		}
	}
	sort.Strings(contributors)
	return RoundResponse{
		GroupID:          round.GroupID,
		Number:           round.Number,
		Recipient:        string(round.Recipient),
		Contributors:     contributors,
		TotalContributed: round.TotalContributed,
		IsComplete:       round.IsComplete,
		Deadline:         round.Deadline,
	}
}

func addressStrings(list []rosca.Address) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = string(a)
	}
	return out
}
