package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/models"
)

func newDashboardTestHandler() (*DashboardHandler, *MockProjectCollection, *MockComplaintCollection, *MockInvoiceCollection, *MockMaintenanceCollection, *MockUserCollection) {
	mockProjects := new(MockProjectCollection)
	mockComplaints := new(MockComplaintCollection)
	mockInvoices := new(MockInvoiceCollection)
	mockMaintenances := new(MockMaintenanceCollection)
	mockUsers := new(MockUserCollection)
	h := NewDashboardHandler(mockProjects, mockComplaints, mockInvoices, mockMaintenances, mockUsers)
	return h, mockProjects, mockComplaints, mockInvoices, mockMaintenances, mockUsers
}

func stubEntityQueries(mockProjects *MockProjectCollection, mockComplaints *MockComplaintCollection, mockMaintenances *MockMaintenanceCollection) {
	mockProjects.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)
	mockComplaints.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)
	mockMaintenances.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	mockProjects.On("FindRecent", mock.Anything, mock.Anything, int64(5)).Return([]models.Project{}, nil)
	mockComplaints.On("FindRecent", mock.Anything, mock.Anything, int64(5)).Return([]models.Complaint{}, nil)
	mockMaintenances.On("FindRecent", mock.Anything, mock.Anything, int64(5)).Return([]models.Maintenance{}, nil)
	mockProjects.On("FindCreatedStamps", mock.Anything, mock.Anything).Return([]models.CreatedStamp{}, nil)
	mockComplaints.On("FindCreatedStamps", mock.Anything, mock.Anything).Return([]models.CreatedStamp{}, nil)
	mockMaintenances.On("FindCreatedStamps", mock.Anything, mock.Anything).Return([]models.CreatedStamp{}, nil)
}

func TestDashboardOverview(t *testing.T) {
	actor := primitive.NewObjectID()

	h, mockProjects, mockComplaints, mockInvoices, mockMaintenances, _ := newDashboardTestHandler()
	stubEntityQueries(mockProjects, mockComplaints, mockMaintenances)
	mockInvoices.On("Count", mock.Anything, activeFilter()).Return(int64(7), nil)

	w := httptest.NewRecorder()
	h.Overview(w, authedRequest("GET", "/api/dashboard", nil, actor))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["activeProjects"])
	assert.Equal(t, float64(7), body["activeInvoices"])
	assert.Contains(t, body, "allProjects")
	assert.NotContains(t, body, "userProjects")
}

func TestDashboardUserOverview(t *testing.T) {
	actor := primitive.NewObjectID()

	h, mockProjects, mockComplaints, mockInvoices, mockMaintenances, _ := newDashboardTestHandler()

	// Every query must be scoped to the caller's assignments.
	scoped := func(filter bson.M) bool {
		return filter["users"] == actor
	}
	mockProjects.On("Count", mock.Anything, mock.MatchedBy(scoped)).Return(int64(1), nil)
	mockComplaints.On("Count", mock.Anything, mock.MatchedBy(scoped)).Return(int64(0), nil)
	mockMaintenances.On("Count", mock.Anything, mock.MatchedBy(scoped)).Return(int64(0), nil)
	mockProjects.On("FindRecent", mock.Anything, mock.MatchedBy(scoped), int64(5)).Return([]models.Project{}, nil)
	mockComplaints.On("FindRecent", mock.Anything, mock.MatchedBy(scoped), int64(5)).Return([]models.Complaint{}, nil)
	mockMaintenances.On("FindRecent", mock.Anything, mock.MatchedBy(scoped), int64(5)).Return([]models.Maintenance{}, nil)
	mockProjects.On("FindCreatedStamps", mock.Anything, mock.MatchedBy(scoped)).Return([]models.CreatedStamp{}, nil)
	mockComplaints.On("FindCreatedStamps", mock.Anything, mock.MatchedBy(scoped)).Return([]models.CreatedStamp{}, nil)
	mockMaintenances.On("FindCreatedStamps", mock.Anything, mock.MatchedBy(scoped)).Return([]models.CreatedStamp{}, nil)

	w := httptest.NewRecorder()
	h.UserOverview(w, authedRequest("GET", "/api/dashboard/user", nil, actor))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["activeProjects"])
	assert.Contains(t, body, "userProjects")
	assert.NotContains(t, body, "activeInvoices")
	mockInvoices.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
}
