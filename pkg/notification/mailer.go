/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"k8s.io/klog/v2"

	"github.com/AMD-AIG-AIMA/clearvoice/pkg/config"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification/channel"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/notification/model"
)

// Mailer sends the transactional emails of the platform. When no email
// channel is configured every send is a logged no-op, so auth flows keep
// working in environments without SMTP.
type Mailer struct {
	channels map[string]channel.Channel
}

// NewMailer initializes the mailer from the loaded configuration.
func NewMailer(ctx context.Context) (*Mailer, error) {
	channels, err := channel.InitChannels(ctx, channel.ConfigFromSettings())
	if err != nil {
		return nil, err
	}
	return &Mailer{channels: channels}, nil
}

// NewMailerWith creates a mailer over explicit channels, for tests.
func NewMailerWith(channels map[string]channel.Channel) *Mailer {
	return &Mailer{channels: channels}
}

// SendVerification mails the email-verification link.
func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	link := config.GetPublicBaseURL() + "/verify-email?token=" + token
	return m.send(ctx, to, "Verify your email", verificationTemplate, map[string]string{"Link": link})
}

// SendPasswordReset mails the password-reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := config.GetPublicBaseURL() + "/reset-password?token=" + token
	return m.send(ctx, to, "Reset your password", resetTemplate, map[string]string{"Link": link})
}

// SendInvitation mails a workspace invitation.
func (m *Mailer) SendInvitation(ctx context.Context, to, workspaceName, inviterName, token string) error {
	link := config.GetPublicBaseURL() + "/invitations/accept?token=" + token
	return m.send(ctx, to, fmt.Sprintf("You're invited to %s", workspaceName), invitationTemplate, map[string]string{
		"Workspace": workspaceName,
		"Inviter":   inviterName,
		"Link":      link,
	})
}

func (m *Mailer) send(ctx context.Context, to, title string, tmpl *template.Template, data interface{}) error {
	ch, ok := m.channels[model.ChannelEmail]
	if !ok {
		klog.V(2).Infof("email channel not configured, dropping %q to %s", title, to)
		return nil
	}
	buff := new(bytes.Buffer)
	if err := tmpl.Execute(buff, data); err != nil {
		return fmt.Errorf("failed to render email template: %v", err)
	}
	return ch.Send(ctx, &model.Message{Email: &model.EmailMessage{
		To:      []string{to},
		Title:   title,
		Content: buff.String(),
	}})
}

var (
	verificationTemplate = template.Must(template.New("verification").Parse(
		`<p>Welcome! Confirm your email address to finish setting up your account.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>The link expires in 24 hours. If you did not sign up, ignore this email.</p>`))

	resetTemplate = template.Must(template.New("reset").Parse(
		`<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in 1 hour. If you did not request this, ignore this email.</p>`))

	invitationTemplate = template.Must(template.New("invitation").Parse(
		`<p>{{.Inviter}} invited you to join the workspace <b>{{.Workspace}}</b>.</p>
<p><a href="{{.Link}}">Accept invitation</a></p>
<p>The invitation expires in 7 days.</p>`))
)
