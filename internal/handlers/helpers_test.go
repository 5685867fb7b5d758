package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/auth"
	"github.com/technotrends/workflow-backend/internal/middleware"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
)

type recordedPush struct {
	batches [][]notify.PushMessage
}

func (p *recordedPush) Send(ctx context.Context, messages []notify.PushMessage) error {
	batch := make([]notify.PushMessage, len(messages))
	copy(batch, messages)
	p.batches = append(p.batches, batch)
	return nil
}

type recordedMail struct {
	sent []string
	err  error
}

func (m *recordedMail) Send(to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

// newTestNotifier wires a notifier over the same user mock the handler
// uses, with fan-out queries stubbed to match nothing by default.
func newTestNotifier(mockUsers *MockUserCollection) (*notify.Service, *recordedPush, *recordedMail) {
	push := &recordedPush{}
	mail := &recordedMail{}
	mockUsers.On("FindByRolesAndStatus", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.User{}, nil).Maybe()
	return notify.NewService(mockUsers, push, mail), push, mail
}

func authedRequest(method, path string, body interface{}, actor primitive.ObjectID) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	ctx := middleware.WithIdentity(req.Context(), &auth.Identity{UserID: actor.Hex(), Verified: true})
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}
