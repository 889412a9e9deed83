/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification/channel"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification/model"
)

type captureChannel struct {
	sent []*model.Message
}

func (c *captureChannel) Init(cfg channel.Config) error { return nil }
func (c *captureChannel) Name() string                  { return model.ChannelEmail }

func (c *captureChannel) Send(ctx context.Context, message *model.Message) error {
	c.sent = append(c.sent, message)
	return nil
}

func TestSendInvitation(t *testing.T) {
	capture := &captureChannel{}
	mailer := NewMailerWith(map[string]channel.Channel{model.ChannelEmail: capture})

	err := mailer.SendInvitation(context.Background(), "new@example.com", "Acme", "Dana", "tok123")
	require.NoError(t, err)
	require.Len(t, capture.sent, 1)

	email := capture.sent[0].Email
	assert.Equal(t, []string{"new@example.com"}, email.To)
	assert.Contains(t, email.Title, "Acme")
	assert.Contains(t, email.Content, "Dana")
	assert.Contains(t, email.Content, "token=tok123")
}

func TestSendVerificationWithoutChannelIsNoop(t *testing.T) {
	mailer := NewMailerWith(map[string]channel.Channel{})
	assert.NoError(t, mailer.SendVerification(context.Background(), "a@example.com", "tok"))
}

func TestSendPasswordReset(t *testing.T) {
	capture := &captureChannel{}
	mailer := NewMailerWith(map[string]channel.Channel{model.ChannelEmail: capture})

	err := mailer.SendPasswordReset(context.Background(), "a@example.com", "rst")
	require.NoError(t, err)
	require.Len(t, capture.sent, 1)
	assert.Contains(t, capture.sent[0].Email.Content, "reset-password?token=rst")
}
