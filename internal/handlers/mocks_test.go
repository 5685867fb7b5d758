package handlers

import (
	"context"
	"time"

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

// MockProjectCollection is a mock implementation of db.ProjectCollection
type MockProjectCollection struct {
	mock.Mock
}

func (m *MockProjectCollection) Insert(ctx context.Context, project models.Project) (*models.Project, error) {
	args := m.Called(ctx, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectCollection) FindByID(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectCollection) Find(ctx context.Context, filter bson.M) ([]models.Project, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Project, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CreatedStamp), args.Error(1)
}

func (m *MockProjectCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Project, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectCollection) AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Project, error) {
	args := m.Called(ctx, id, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockProjectCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockComplaintCollection is a mock implementation of db.ComplaintCollection
type MockComplaintCollection struct {
	mock.Mock
}

func (m *MockComplaintCollection) Insert(ctx context.Context, complaint models.Complaint) (*models.Complaint, error) {
	args := m.Called(ctx, complaint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) Find(ctx context.Context, filter bson.M) ([]models.Complaint, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Complaint, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CreatedStamp), args.Error(1)
}

func (m *MockComplaintCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Complaint, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) AddUsers(ctx context.Context, id string, userIDs []primitive.ObjectID) (*models.Complaint, error) {
	args := m.Called(ctx, id, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockComplaintCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceCollection is a mock implementation of db.InvoiceCollection
type MockInvoiceCollection struct {
	mock.Mock
}

func (m *MockInvoiceCollection) Insert(ctx context.Context, invoice models.Invoice) (*models.Invoice, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) Find(ctx context.Context, filter bson.M) ([]models.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) FindOneByProject(ctx context.Context, projectID primitive.ObjectID) (*models.Invoice, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) FindOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) UpdateByID(ctx context.Context, id string, update bson.M) (*models.Invoice, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) SetStatus(ctx context.Context, id string, status models.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockInvoiceCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockMaintenanceCollection is a mock implementation of db.MaintenanceCollection
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) Insert(ctx context.Context, maintenance models.Maintenance) (*models.Maintenance, error) {
	args := m.Called(ctx, maintenance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) FindByID(ctx context.Context, id string) (*models.Maintenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) Find(ctx context.Context, filter bson.M) ([]models.Maintenance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) FindRecent(ctx context.Context, filter bson.M, limit int64) ([]models.Maintenance, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) FindCreatedStamps(ctx context.Context, filter bson.M) ([]models.CreatedStamp, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CreatedStamp), args.Error(1)
}

func (m *MockMaintenanceCollection) FindUpcoming(ctx context.Context, from, to time.Time) ([]models.Maintenance, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) Replace(ctx context.Context, id string, maintenance models.Maintenance) (*models.Maintenance, error) {
	args := m.Called(ctx, id, maintenance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceCollection) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
