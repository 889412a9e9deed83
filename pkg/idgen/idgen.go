/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package idgen

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"
)

// Entity id prefixes. Ids sort by creation time within a prefix because the
// timestamp component leads.
const (
	PrefixUser       = "usr"
	PrefixFeedback   = "fb"
	PrefixComment    = "cmt"
	PrefixVote       = "vote"
	PrefixTag        = "tag"
	PrefixInvitation = "inv"
	PrefixTheme      = "theme"
	PrefixEndUser    = "eu"
	PrefixSession    = "sess"
)

var encoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// New returns a prefixed, time-sortable id, e.g. "fb_06bhq3w2a0k2rjfyz8tn".
func New(prefix string) string {
	var buf [12]byte
	ms := uint64(time.Now().UnixMilli())
	for i := 5; i >= 0; i-- {
		buf[i] = byte(ms)
		ms >>= 8
	}
	if _, err := rand.Read(buf[6:]); err != nil {
		// crypto/rand failure means the process has bigger problems
		panic(fmt.Sprintf("idgen: %v", err))
	}
	return prefix + "_" + encoding.EncodeToString(buf[:])
}

// Prefix returns the entity prefix of an id, or "" when the id has none.
func Prefix(id string) string {
	idx := strings.IndexByte(id, '_')
	if idx <= 0 {
		return ""
	}
	return id[:idx]
}
