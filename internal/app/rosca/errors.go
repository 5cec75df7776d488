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

import (
	"github.com/pkg/errors"
)

// ErrorCode enumerates every failure kind a contract call can return.
// Codes are part of the public surface and never renumbered.
type ErrorCode int

const (
	CodeNotInitialized       ErrorCode = 1
	CodeAlreadyInitialized   ErrorCode = 2
	CodeUnauthorized         ErrorCode = 3
	CodeGroupNotFound        ErrorCode = 4
	CodeGroupFull            ErrorCode = 5
	CodeAlreadyMember        ErrorCode = 6
	CodeNotMember            ErrorCode = 7
	CodeGroupNotActive       ErrorCode = 8
	CodeAlreadyContributed   ErrorCode = 9
	CodeRoundNotActive       ErrorCode = 10
	CodeInvalidAmount        ErrorCode = 11
	CodeGroupNotForming      ErrorCode = 12
	CodePayoutFailed         ErrorCode = 13
	CodeGroupPaused          ErrorCode = 14
	CodeDisputeActive        ErrorCode = 15
	CodeInsufficientMembers  ErrorCode = 16
	CodeRoundNotComplete     ErrorCode = 17
	CodeGroupCompleted       ErrorCode = 18
	CodeTemplateNotFound     ErrorCode = 19
	CodeTemplateLimitReached ErrorCode = 20
)

// Error is a contract failure. A failed call commits nothing, so callers
// may treat any Error as "nothing happened" and resubmit once the
// triggering condition is corrected.
type Error struct {
	Code ErrorCode
	text string
}

func (e Error) Error() string {
	return e.text
}

var (
	ErrNotInitialized       = Error{CodeNotInitialized, "protocol not initialized"}
	ErrAlreadyInitialized   = Error{CodeAlreadyInitialized, "protocol already initialized"}
	ErrUnauthorized         = Error{CodeUnauthorized, "unauthorized"}
	ErrGroupNotFound        = Error{CodeGroupNotFound, "group not found"}
	ErrGroupFull            = Error{CodeGroupFull, "group is full"}
	ErrAlreadyMember        = Error{CodeAlreadyMember, "already a member"}
	ErrNotMember            = Error{CodeNotMember, "not a member"}
	ErrGroupNotActive       = Error{CodeGroupNotActive, "group is not active"}
	ErrAlreadyContributed   = Error{CodeAlreadyContributed, "already contributed this round"}
	ErrRoundNotActive       = Error{CodeRoundNotActive, "round is not active"}
	ErrInvalidAmount        = Error{CodeInvalidAmount, "invalid amount"}
	ErrGroupNotForming      = Error{CodeGroupNotForming, "group is not forming"}
	ErrPayoutFailed         = Error{CodePayoutFailed, "payout transfer failed"}
	ErrGroupPaused          = Error{CodeGroupPaused, "group is paused"}
	ErrDisputeActive        = Error{CodeDisputeActive, "dispute is active"}
	ErrInsufficientMembers  = Error{CodeInsufficientMembers, "not enough members"}
	ErrRoundNotComplete     = Error{CodeRoundNotComplete, "round is not complete"}
	ErrGroupCompleted       = Error{CodeGroupCompleted, "group already completed"}
	ErrTemplateNotFound     = Error{CodeTemplateNotFound, "template not found"}
	ErrTemplateLimitReached = Error{CodeTemplateLimitReached, "template limit reached"}
)

// Code extracts the contract error code from err, unwrapping any
// infrastructure wrapping on the way. Returns 0 for non-contract errors.
func Code(err error) ErrorCode {
	if err == nil {
		return 0
	}
	if e, ok := errors.Cause(err).(Error); ok {
		return e.Code
	}
	return 0
}
