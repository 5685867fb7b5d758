package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/models"
)

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) Insert(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindByEmailExcluding(ctx context.Context, email string, excludeID string) (*models.User, error) {
	args := m.Called(ctx, email, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) FindByRolesAndStatus(ctx context.Context, roles []models.Role, status models.ApprovalStatus) ([]models.User, error) {
	args := m.Called(ctx, roles, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) FindByStatus(ctx context.Context, status models.ApprovalStatus) ([]models.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type recordingPushSender struct {
	batches [][]PushMessage
}

func (p *recordingPushSender) Send(ctx context.Context, messages []PushMessage) error {
	batch := make([]PushMessage, len(messages))
	copy(batch, messages)
	p.batches = append(p.batches, batch)
	return nil
}

type sentMail struct {
	to      string
	subject string
}

type recordingMailSender struct {
	sent []sentMail
	err  error
}

func (m *recordingMailSender) Send(to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func approvedUser(name string, role models.Role, pushToken string) models.User {
	return models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     name + "@example.com",
		Role:      role,
		Status:    models.ApprovalApproved,
		PushToken: pushToken,
	}
}

func TestNotifyAdmins(t *testing.T) {
	t.Run("sends push and email to every admin", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		admins := []models.User{
			approvedUser("alice", models.RoleAdmin, "token-a"),
			approvedUser("dan", models.RoleDirector, "token-d"),
		}
		mockUsers.On("FindByRolesAndStatus", mock.Anything,
			[]models.Role{models.RoleAdmin, models.RoleDirector}, models.ApprovalApproved).
			Return(admins, nil)

		svc.NotifyAdmins(context.Background(), "Subject", "<p>body</p>", "Title", "Body", map[string]string{"type": "test"})

		assert.Len(t, push.batches, 1)
		assert.Len(t, push.batches[0], 2)
		assert.Equal(t, "token-a", push.batches[0][0].To)
		assert.Equal(t, "Title", push.batches[0][0].Title)
		assert.Equal(t, "default", push.batches[0][0].Sound)

		assert.Len(t, mail.sent, 2)
		assert.Equal(t, "alice@example.com", mail.sent[0].to)
		assert.Equal(t, "Subject", mail.sent[0].subject)
		mockUsers.AssertExpectations(t)
	})

	t.Run("skips push without a title and body", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		admins := []models.User{approvedUser("alice", models.RoleAdmin, "token-a")}
		mockUsers.On("FindByRolesAndStatus", mock.Anything, mock.Anything, mock.Anything).Return(admins, nil)

		svc.NotifyAdmins(context.Background(), "Subject", "<p>body</p>", "", "", nil)

		assert.Empty(t, push.batches)
		assert.Len(t, mail.sent, 1)
	})

	t.Run("mail failure does not stop remaining sends", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{err: fmt.Errorf("smtp down")}
		svc := NewService(mockUsers, push, mail)

		admins := []models.User{
			approvedUser("alice", models.RoleAdmin, "token-a"),
			approvedUser("dan", models.RoleDirector, "token-d"),
		}
		mockUsers.On("FindByRolesAndStatus", mock.Anything, mock.Anything, mock.Anything).Return(admins, nil)

		svc.NotifyAdmins(context.Background(), "Subject", "<p>body</p>", "Title", "Body", nil)

		assert.Len(t, push.batches, 1)
		assert.Empty(t, mail.sent)
	})
}

func TestNotifyUsers(t *testing.T) {
	t.Run("filters unapproved users", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		pendingUser := approvedUser("bob", models.RoleUser, "token-b")
		pendingUser.Status = models.ApprovalPending
		users := []models.User{
			approvedUser("alice", models.RoleUser, "token-a"),
			pendingUser,
		}
		ids := []primitive.ObjectID{users[0].ID, users[1].ID}
		mockUsers.On("FindByIDs", mock.Anything, ids).Return(users, nil)

		svc.NotifyUsers(context.Background(), ids, "Title", "Body", nil, "Subject", "<p>body</p>")

		assert.Len(t, push.batches, 1)
		assert.Len(t, push.batches[0], 1)
		assert.Equal(t, "token-a", push.batches[0][0].To)
		assert.Len(t, mail.sent, 1)
		assert.Equal(t, "alice@example.com", mail.sent[0].to)
	})

	t.Run("no email without a subject and body", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		users := []models.User{approvedUser("alice", models.RoleUser, "token-a")}
		ids := []primitive.ObjectID{users[0].ID}
		mockUsers.On("FindByIDs", mock.Anything, ids).Return(users, nil)

		svc.NotifyUsers(context.Background(), ids, "Title", "Body", nil, "", "")

		assert.Len(t, push.batches, 1)
		assert.Empty(t, mail.sent)
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		svc.NotifyUsers(context.Background(), nil, "Title", "Body", nil, "Subject", "<p>body</p>")

		assert.Empty(t, push.batches)
		assert.Empty(t, mail.sent)
		mockUsers.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("splits push delivery into batches of one hundred", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		push := &recordingPushSender{}
		mail := &recordingMailSender{}
		svc := NewService(mockUsers, push, mail)

		var users []models.User
		var ids []primitive.ObjectID
		for i := 0; i < 150; i++ {
			u := approvedUser(fmt.Sprintf("user%d", i), models.RoleUser, fmt.Sprintf("token-%d", i))
			users = append(users, u)
			ids = append(ids, u.ID)
		}
		mockUsers.On("FindByIDs", mock.Anything, ids).Return(users, nil)

		svc.NotifyUsers(context.Background(), ids, "Title", "Body", nil, "", "")

		assert.Len(t, push.batches, 2)
		assert.Len(t, push.batches[0], 100)
		assert.Len(t, push.batches[1], 50)
	})
}
