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
	"context"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
	"github.com/sorosave-protocol/contracts/internal/app/rosca/contract"
)

// ContractServer exposes the contract calls over HTTP. Mutations are thin
// pass-throughs; group reads go through a small LRU that mutations of the
// same group invalidate.
type ContractServer struct {
	contract *contract.Contract
	log      *logrus.Logger
	groups   *lru.Cache
}

func NewContractServer(c *contract.Contract, log *logrus.Logger, cacheSize int) *ContractServer {
	cache, err := lru.New(cacheSize)
	if err != nil {
		// only fails on size <= 0
		cache, _ = lru.New(1)
	}
	return &ContractServer{contract: c, log: log, groups: cache}
}

func (s *ContractServer) Initialize(ctx echo.Context) error {
	var req InitializeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	err := s.contract.Initialize(requestCtx(ctx), rosca.Address(req.Admin))
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *ContractServer) CreateGroup(ctx echo.Context) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	var req CreateGroupRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	groupID, err := s.contract.CreateGroup(requestCtx(ctx), signer, contract.GroupParams{
		Name:               req.Name,
		Token:              rosca.Address(req.Token),
		ContributionAmount: req.ContributionAmount,
		DepositAmount:      req.DepositAmount,
		CycleLength:        req.CycleLength,
		MaxMembers:         req.MaxMembers,
	})
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, GroupCreatedResponse{GroupID: groupID})
}

func (s *ContractServer) GetGroup(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	if cached, ok := s.groups.Get(groupID); ok {
		return ctx.JSON(http.StatusOK, cached.(GroupResponse))
	}
	group, err := s.contract.GetGroup(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	res := groupResponse(group)
	s.groups.Add(groupID, res)
	return ctx.JSON(http.StatusOK, res)
}

func (s *ContractServer) JoinGroup(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.JoinGroup)
}

func (s *ContractServer) LeaveGroup(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.LeaveGroup)
}

func (s *ContractServer) StartGroup(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.StartGroup)
}

func (s *ContractServer) Contribute(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.Contribute)
}

func (s *ContractServer) PauseGroup(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.PauseGroup)
}

func (s *ContractServer) ResumeGroup(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.ResumeGroup)
}

func (s *ContractServer) ResolveDispute(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.ResolveDispute)
}

func (s *ContractServer) EmergencyWithdraw(ctx echo.Context) error {
	return s.memberCall(ctx, s.contract.EmergencyWithdraw)
}

// DistributePayout is permissionless: anyone may settle a complete round.
func (s *ContractServer) DistributePayout(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	if err := s.contract.DistributePayout(requestCtx(ctx), groupID); err != nil {
		return s.callError(ctx, err)
	}
	s.groups.Remove(groupID)
	return ctx.NoContent(http.StatusNoContent)
}

func (s *ContractServer) RaiseDispute(ctx echo.Context) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	var req DisputeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	if err := s.contract.RaiseDispute(requestCtx(ctx), signer, groupID, req.Reason); err != nil {
		return s.callError(ctx, err)
	}
	s.groups.Remove(groupID)
	return ctx.NoContent(http.StatusNoContent)
}

func (s *ContractServer) GetDispute(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	dispute, err := s.contract.GetDispute(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	if dispute == nil {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("no active dispute"))
	}
	return ctx.JSON(http.StatusOK, DisputeResponse{
		GroupID:  dispute.GroupID,
		RaisedBy: string(dispute.RaisedBy),
		Reason:   dispute.Reason,
		RaisedAt: dispute.RaisedAt,
	})
}

func (s *ContractServer) SetGroupAdmin(ctx echo.Context) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	var req SetAdminRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	if req.NewAdmin == "" {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`new_admin` is required"))
	}
	err = s.contract.SetGroupAdmin(requestCtx(ctx), signer, groupID, rosca.Address(req.NewAdmin))
	if err != nil {
		return s.callError(ctx, err)
	}
	s.groups.Remove(groupID)
	return ctx.NoContent(http.StatusNoContent)
}

func (s *ContractServer) GetRound(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	number, err := strconv.ParseUint(ctx.Param("number"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid round number"))
	}
	round, err := s.contract.GetRoundStatus(requestCtx(ctx), groupID, uint32(number))
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, roundResponse(round))
}

func (s *ContractServer) GetContribution(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	number, err := strconv.ParseUint(ctx.Param("number"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid round number"))
	}
	member := rosca.Address(ctx.Param("address"))
	contributed, err := s.contract.HasContributed(requestCtx(ctx), member, groupID, uint32(number))
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ContributionResponse{
		Member:      string(member),
		Round:       uint32(number),
		Contributed: contributed,
	})
}

func (s *ContractServer) GetPayoutOrder(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	order, err := s.contract.GetPayoutOrder(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, PayoutOrderResponse{PayoutOrder: addressStrings(order)})
}

func (s *ContractServer) GetCurrentRecipient(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	group, err := s.contract.GetGroup(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	recipient, err := s.contract.GetCurrentRecipient(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, RecipientResponse{
		Recipient: string(recipient),
		Round:     group.CurrentRound,
	})
}

func (s *ContractServer) GetGroupEvents(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	events, err := s.contract.GetGroupEvents(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	res := make([]EventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, EventResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			GroupID:   e.GroupID,
			Member:    string(e.Member),
			Amount:    e.Amount,
			Round:     e.Round,
			Timestamp: e.Timestamp,
		})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *ContractServer) GetDeposits(ctx echo.Context) error {
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	deposits, err := s.contract.GetDeposits(requestCtx(ctx), groupID)
	if err != nil {
		return s.callError(ctx, err)
	}
	res := DepositsResponse{Deposits: make(map[string]int64, len(deposits))}
	for member, amount := range deposits {
		res.Deposits[string(member)] = amount
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *ContractServer) GetMemberGroups(ctx echo.Context) error {
	member := ctx.Param("address")
	if member == "" {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`address` is required"))
	}
	groups, err := s.contract.GetMemberGroups(requestCtx(ctx), rosca.Address(member))
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, MemberGroupsResponse{Groups: groups})
}

func (s *ContractServer) SaveTemplate(ctx echo.Context) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	var req SaveTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	templateID, err := s.contract.SaveTemplate(requestCtx(ctx), signer, contract.GroupParams{
		Name:               req.Name,
		Token:              rosca.Address(req.Token),
		ContributionAmount: req.ContributionAmount,
		DepositAmount:      req.DepositAmount,
		CycleLength:        req.CycleLength,
		MaxMembers:         req.MaxMembers,
	})
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, TemplateSavedResponse{TemplateID: templateID})
}

func (s *ContractServer) GetTemplate(ctx echo.Context) error {
	owner := ctx.Param("owner")
	templateID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid template id"))
	}
	template, err := s.contract.GetTemplate(requestCtx(ctx), rosca.Address(owner), uint32(templateID))
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, TemplateResponse{
		Owner:              string(template.Owner),
		ID:                 template.ID,
		Name:               template.Name,
		Token:              string(template.Token),
		ContributionAmount: template.ContributionAmount,
		DepositAmount:      template.DepositAmount,
		CycleLength:        template.CycleLength,
		MaxMembers:         template.MaxMembers,
	})
}

func (s *ContractServer) CreateFromTemplate(ctx echo.Context) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	var req CreateFromTemplateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("invalid request body"))
	}
	groupID, err := s.contract.CreateFromTemplate(requestCtx(ctx), signer, req.TemplateID, req.Name)
	if err != nil {
		return s.callError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, GroupCreatedResponse{GroupID: groupID})
}

// memberCall handles the mutations whose whole input is (signer, group id).
func (s *ContractServer) memberCall(
	ctx echo.Context,
	call func(c context.Context, caller rosca.Address, groupID uint64) error,
) error {
	signer, ok := requestSigner(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, NewSingleMessageError("missing signer"))
	}
	groupID, err := parseGroupID(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	if err := call(requestCtx(ctx), signer, groupID); err != nil {
		return s.callError(ctx, err)
	}
	s.groups.Remove(groupID)
	return ctx.NoContent(http.StatusNoContent)
}

// callError translates a contract error into an HTTP response.
func (s *ContractServer) callError(ctx echo.Context, err error) error {
	code := rosca.Code(err)
	if code == 0 {
		s.log.Error(err)
		return ctx.JSON(http.StatusInternalServerError, struct{}{})
	}
	return ctx.JSON(httpStatus(code), NewSingleMessageError(err.Error()))
}

func httpStatus(code rosca.ErrorCode) int {
	switch code {
	case rosca.CodeUnauthorized:
		return http.StatusUnauthorized
	case rosca.CodeGroupNotFound, rosca.CodeTemplateNotFound:
		return http.StatusNotFound
	case rosca.CodeInvalidAmount, rosca.CodeInsufficientMembers:
		return http.StatusBadRequest
	case rosca.CodePayoutFailed:
		return http.StatusBadGateway
	default:
		// state machine violations
		return http.StatusConflict
	}
}

func parseGroupID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid group id")
	}
	return id, nil
}

func requestSigner(ctx echo.Context) (rosca.Address, bool) {
	return SignerFromContext(ctx.Request().Context())
}

func requestCtx(ctx echo.Context) context.Context {
	return ctx.Request().Context()
}
