// Package notify fans entity events out to staff by push and email. All
// delivery is best-effort: failures are logged and swallowed, and callers
// must treat every method as infallible. Fan-out always runs after the
// triggering mutation has been persisted.
package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
)

// Service resolves recipients and dispatches through the push and mail
// senders.
type Service struct {
	users db.UserCollection
	push  PushSender
	mail  MailSender
}

// NewService creates a notification gateway.
func NewService(users db.UserCollection, push PushSender, mail MailSender) *Service {
	return &Service{users: users, push: push, mail: mail}
}

// NotifyAdmins sends an email to every approved admin and director, plus a
// push message when a push title and body are supplied.
func (s *Service) NotifyAdmins(ctx context.Context, subject, html, pushTitle, pushBody string, data map[string]string) {
	admins, err := s.users.FindByRolesAndStatus(ctx,
		[]models.Role{models.RoleAdmin, models.RoleDirector}, models.ApprovalApproved)
	if err != nil {
		log.WithError(err).Error("failed to resolve admin recipients")
		return
	}
	if len(admins) == 0 {
		return
	}

	if pushTitle != "" && pushBody != "" {
		s.sendPush(ctx, pushTokens(admins), pushTitle, pushBody, data)
	}

	for _, admin := range admins {
		if err := s.mail.Send(admin.Email, subject, html); err != nil {
			log.WithError(err).WithField("to", admin.Email).Error("failed to send notification email")
		}
	}
}

// NotifyUsers sends a push message to the approved users among the given
// ids, plus an email when an email subject and body are both supplied.
func (s *Service) NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, pushTitle, pushBody string, data map[string]string, emailSubject, emailHTML string) {
	if len(userIDs) == 0 {
		return
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		log.WithError(err).Error("failed to resolve user recipients")
		return
	}
	approved := users[:0]
	for _, u := range users {
		if u.Status == models.ApprovalApproved {
			approved = append(approved, u)
		}
	}
	if len(approved) == 0 {
		return
	}

	s.sendPush(ctx, pushTokens(approved), pushTitle, pushBody, data)

	if emailSubject != "" && emailHTML != "" {
		for _, u := range approved {
			if err := s.mail.Send(u.Email, emailSubject, emailHTML); err != nil {
				log.WithError(err).WithField("to", u.Email).Error("failed to send notification email")
			}
		}
	}
}

// sendPush delivers to all tokens in relay-sized batches.
func (s *Service) sendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) {
	if len(tokens) == 0 {
		return
	}
	if data == nil {
		data = map[string]string{}
	}

	messages := make([]PushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, PushMessage{
			To:    token,
			Sound: "default",
			Title: title,
			Body:  body,
			Data:  data,
		})
	}

	for start := 0; start < len(messages); start += pushBatchSize {
		end := start + pushBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		if err := s.push.Send(ctx, messages[start:end]); err != nil {
			log.WithError(err).Error("failed to send push batch")
		}
	}
}

func pushTokens(users []models.User) []string {
	tokens := make([]string, 0, len(users))
	for _, u := range users {
		if u.PushToken != "" {
			tokens = append(tokens, u.PushToken)
		}
	}
	return tokens
}
