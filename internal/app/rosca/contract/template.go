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

package contract

import (
	"context"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

// MaxTemplatesPerAdmin caps the saved-template registry per owner.
const MaxTemplatesPerAdmin = 10

// SaveTemplate stores a group configuration for quick re-creation.
func (c *Contract) SaveTemplate(ctx context.Context, admin rosca.Address, params GroupParams) (uint32, error) {
	if err := c.auth.RequireAuth(ctx, admin); err != nil {
		return 0, c.failed(err)
	}
	if err := params.validate(); err != nil {
		return 0, c.failed(err)
	}

	var templateID uint32
	err := c.store.Update(ctx, 0, func(tx rosca.Tx) error {
		count, err := tx.Templates().Count(admin)
		if err != nil {
			return err
		}
		if count >= MaxTemplatesPerAdmin {
			return rosca.ErrTemplateLimitReached
		}
		templateID = count + 1
		if err := tx.Templates().Save(&rosca.Template{
			Owner:              admin,
			ID:                 templateID,
			Name:               params.Name,
			Token:              params.Token,
			ContributionAmount: params.ContributionAmount,
			DepositAmount:      params.DepositAmount,
			CycleLength:        params.CycleLength,
			MaxMembers:         params.MaxMembers,
		}); err != nil {
			return err
		}
		return c.emit(tx, &rosca.Event{Kind: rosca.EventTemplateSaved, Member: admin})
	})
	if err != nil {
		return 0, c.failed(err)
	}

	c.metrics.Templates.Inc()
	c.log.WithField("owner", admin).WithField("template_id", templateID).Info("template saved")
	return templateID, nil
}

// GetTemplate returns a saved template by owner and id.
func (c *Contract) GetTemplate(ctx context.Context, owner rosca.Address, templateID uint32) (*rosca.Template, error) {
	var template *rosca.Template
	err := c.store.View(ctx, func(tx rosca.Tx) error {
		var err error
		template, err = tx.Templates().Get(owner, templateID)
		return err
	})
	if err != nil {
		return nil, c.failed(err)
	}
	return template, nil
}

// CreateFromTemplate instantiates a new group from a saved template. The
// template's configuration is taken as-is; only the display name is fresh.
func (c *Contract) CreateFromTemplate(ctx context.Context, admin rosca.Address, templateID uint32, name string) (uint64, error) {
	template, err := c.GetTemplate(ctx, admin, templateID)
	if err != nil {
		return 0, err
	}
	return c.CreateGroup(ctx, admin, GroupParams{
		Name:               name,
		Token:              template.Token,
		ContributionAmount: template.ContributionAmount,
		DepositAmount:      template.DepositAmount,
		CycleLength:        template.CycleLength,
		MaxMembers:         template.MaxMembers,
	})
}
