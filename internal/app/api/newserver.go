// Copyright 2025 SoroSave Protocol Ltd.
// All rights reserved.
// This material is licensed under the Apache License, Version 2.0,
// available at http://www.apache.org/licenses/LICENSE-2.0.

package api

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/sorosave-protocol/contracts/internal/app/rosca/contract"
)

func NewServer(c *contract.Contract, log *logrus.Logger, cacheSize int) *ContractServer {
	return NewContractServer(c, log, cacheSize)
}

// RegisterHandlers mounts every contract route on e under /api.
func RegisterHandlers(e *echo.Echo, s *ContractServer) {
	e.Use(SignerMiddleware())

	g := e.Group("/api")

	g.POST("/admin/initialize", s.Initialize)

	g.POST("/groups", s.CreateGroup)
	g.GET("/groups/:id", s.GetGroup)
	g.POST("/groups/:id/join", s.JoinGroup)
	g.POST("/groups/:id/leave", s.LeaveGroup)
	g.POST("/groups/:id/start", s.StartGroup)
	g.POST("/groups/:id/contribute", s.Contribute)
	g.POST("/groups/:id/distribute", s.DistributePayout)
	g.POST("/groups/:id/pause", s.PauseGroup)
	g.POST("/groups/:id/resume", s.ResumeGroup)
	g.POST("/groups/:id/dispute", s.RaiseDispute)
	g.GET("/groups/:id/dispute", s.GetDispute)
	g.POST("/groups/:id/dispute/resolve", s.ResolveDispute)
	g.POST("/groups/:id/emergency-withdraw", s.EmergencyWithdraw)
	g.PUT("/groups/:id/admin", s.SetGroupAdmin)

	g.GET("/groups/:id/rounds/:number", s.GetRound)
	g.GET("/groups/:id/rounds/:number/contributions/:address", s.GetContribution)
	g.GET("/groups/:id/payout-order", s.GetPayoutOrder)
	g.GET("/groups/:id/recipient", s.GetCurrentRecipient)
	g.GET("/groups/:id/events", s.GetGroupEvents)
	g.GET("/groups/:id/deposits", s.GetDeposits)

	g.GET("/members/:address/groups", s.GetMemberGroups)

	g.POST("/templates", s.SaveTemplate)
	g.GET("/templates/:owner/:id", s.GetTemplate)
	g.POST("/templates/groups", s.CreateFromTemplate)
}
