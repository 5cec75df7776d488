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

	"github.com/labstack/echo/v4"

	"github.com/sorosave-protocol/contracts/internal/app/rosca"
)

// SignerHeader carries the authenticated caller address. The gateway in
// front of this service verifies the request signature and sets the header;
// the service itself only checks that the claimed principal of each call
// matches it.
const SignerHeader = "X-Signer"

type signerKey struct{}

func WithSigner(ctx context.Context, signer rosca.Address) context.Context {
	return context.WithValue(ctx, signerKey{}, signer)
}

func SignerFromContext(ctx context.Context) (rosca.Address, bool) {
	signer, ok := ctx.Value(signerKey{}).(rosca.Address)
	return signer, ok
}

// SignerAuthorizer authorizes a principal iff it equals the request signer.
type SignerAuthorizer struct{}

func (a SignerAuthorizer) RequireAuth(ctx context.Context, principal rosca.Address) error {
	signer, ok := SignerFromContext(ctx)
	if !ok || signer == "" || signer != principal {
		return rosca.ErrUnauthorized
	}
	return nil
}

// SignerMiddleware copies the signer header into the request context, where
// SignerAuthorizer finds it.
func SignerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			signer := ctx.Request().Header.Get(SignerHeader)
			if signer != "" {
				req := ctx.Request()
				ctx.SetRequest(req.WithContext(WithSigner(req.Context(), rosca.Address(signer))))
			}
			return next(ctx)
		}
	}
}
