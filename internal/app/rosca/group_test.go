// Copyright 2025 SoroSave Protocol Ltd.
// All rights reserved.
// This material is licensed under the Apache License, Version 2.0,
// available at http://www.apache.org/licenses/LICENSE-2.0.

package rosca

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGroup_RemoveMember(t *testing.T) {
	group := &Group{Members: []Address{"a", "b", "c", "d"}}

	group.RemoveMember("b")
	// join order of the others is preserved
	assert.Equal(t, []Address{"a", "c", "d"}, group.Members)

	group.RemoveMember("nobody")
	assert.Equal(t, []Address{"a", "c", "d"}, group.Members)
}

func TestGroup_HasMember(t *testing.T) {
	group := &Group{Members: []Address{"a", "b"}}
	assert.True(t, group.HasMember("a"))
	assert.False(t, group.HasMember("c"))
}

func TestCode(t *testing.T) {
	assert.Equal(t, ErrorCode(0), Code(nil))
	assert.Equal(t, ErrorCode(0), Code(errors.New("plain")))
	assert.Equal(t, CodeGroupNotFound, Code(ErrGroupNotFound))
	// wrapping keeps the code reachable
	assert.Equal(t, CodePayoutFailed, Code(errors.Wrap(ErrPayoutFailed, "transfer rejected")))
}
