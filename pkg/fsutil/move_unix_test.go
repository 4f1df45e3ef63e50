// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package fsutil

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCrossDevice(t *testing.T) {
	exdev := &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EXDEV}
	assert.True(t, isCrossDevice(exdev))

	// Permission and any other rename failure must not trigger the
	// copy fallback.
	eacces := &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EACCES}
	assert.False(t, isCrossDevice(eacces))

	assert.False(t, isCrossDevice(errors.New("plain error")))
	assert.False(t, isCrossDevice(nil))
}
