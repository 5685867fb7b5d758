package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
)

func newMaintenanceTestHandler() (*MaintenanceHandler, *MockMaintenanceCollection, *MockUserCollection, *recordedPush, *recordedMail) {
	mockMaintenances := new(MockMaintenanceCollection)
	mockUsers := new(MockUserCollection)
	notifier, push, mail := newTestNotifier(mockUsers)
	return NewMaintenanceHandler(mockMaintenances, mockUsers, notifier), mockMaintenances, mockUsers, push, mail
}

func serviceDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestMaintenanceCreate(t *testing.T) {
	actor := primitive.NewObjectID()

	t.Run("requires a client name", func(t *testing.T) {
		h, _, _, _, _ := newMaintenanceTestHandler()

		w := httptest.NewRecorder()
		h.Create(w, authedRequest("POST", "/api/maintenances", map[string]interface{}{
			"remarks": map[string]interface{}{"value": "quarterly"},
		}, actor))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Client name is required", decodeBody(t, w)["message"])
	})

	t.Run("stamps month and year on service dates", func(t *testing.T) {
		h, mockMaintenances, mockUsers, _, _ := newMaintenanceTestHandler()
		mockUsers.On("FindByID", mock.Anything, actor.Hex()).Return(nil, db.ErrNotFound).Maybe()
		mockUsers.On("FindByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

		created := &models.Maintenance{ID: primitive.NewObjectID(), ClientName: "Acme", CreatedBy: actor}
		mockMaintenances.On("Insert", mock.Anything, mock.MatchedBy(func(m models.Maintenance) bool {
			return len(m.ServiceDates) == 1 &&
				m.ServiceDates[0].Month == 3 &&
				m.ServiceDates[0].Year == 2025 &&
				m.ServiceDates[0].PaymentStatus == models.PaymentStatusPending &&
				m.Status == models.StatusPending
		})).Return(created, nil)

		w := httptest.NewRecorder()
		h.Create(w, authedRequest("POST", "/api/maintenances", map[string]interface{}{
			"clientName":   "Acme",
			"serviceDates": []map[string]interface{}{{"serviceDate": "2025-03-15T00:00:00Z"}},
		}, actor))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Maintenance created successfully", decodeBody(t, w)["message"])
		mockMaintenances.AssertExpectations(t)
	})

	t.Run("explicit status overrides the derived one", func(t *testing.T) {
		h, mockMaintenances, mockUsers, _, _ := newMaintenanceTestHandler()
		mockUsers.On("FindByID", mock.Anything, actor.Hex()).Return(nil, db.ErrNotFound).Maybe()
		mockUsers.On("FindByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

		created := &models.Maintenance{ID: primitive.NewObjectID(), ClientName: "Acme", Status: models.StatusCompleted, CreatedBy: actor}
		mockMaintenances.On("Insert", mock.Anything, mock.MatchedBy(func(m models.Maintenance) bool {
			return m.Status == models.StatusCompleted
		})).Return(created, nil)

		w := httptest.NewRecorder()
		h.Create(w, authedRequest("POST", "/api/maintenances", map[string]interface{}{
			"clientName": "Acme",
			"status":     "Completed",
		}, actor))

		assert.Equal(t, http.StatusCreated, w.Code)
		mockMaintenances.AssertExpectations(t)
	})
}

func TestMaintenanceUpdate(t *testing.T) {
	actor := primitive.NewObjectID()
	maintenanceID := primitive.NewObjectID()

	t.Run("completing a visit appends the next month", func(t *testing.T) {
		h, mockMaintenances, mockUsers, _, _ := newMaintenanceTestHandler()
		mockUsers.On("FindByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

		current := &models.Maintenance{
			ID:         maintenanceID,
			ClientName: "Acme",
			ServiceDates: []models.ServiceDate{
				{ServiceDate: serviceDay(2025, time.January, 10), Month: 1, Year: 2025},
				{ServiceDate: serviceDay(2025, time.January, 25), Month: 1, Year: 2025},
			},
			Status:    models.StatusPending,
			CreatedBy: actor,
		}
		mockMaintenances.On("FindByID", mock.Anything, maintenanceID.Hex()).Return(current, nil)
		mockMaintenances.On("Replace", mock.Anything, maintenanceID.Hex(), mock.MatchedBy(func(m models.Maintenance) bool {
			if len(m.ServiceDates) != 4 {
				return false
			}
			appended := m.ServiceDates[2:]
			return appended[0].ServiceDate.Equal(serviceDay(2025, time.February, 10)) &&
				appended[1].ServiceDate.Equal(serviceDay(2025, time.February, 25)) &&
				appended[0].Month == 2 && appended[0].Year == 2025 &&
				!appended[0].IsCompleted
		})).Return(current, nil)

		req := authedRequest("PUT", "/api/maintenances/"+maintenanceID.Hex(), map[string]interface{}{
			"serviceDates": []map[string]interface{}{
				{"serviceDate": "2025-01-10T00:00:00Z", "isCompleted": true},
				{"serviceDate": "2025-01-25T00:00:00Z"},
			},
		}, actor)
		req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
		w := httptest.NewRecorder()
		h.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Maintenance updated successfully", decodeBody(t, w)["message"])
		mockMaintenances.AssertExpectations(t)
	})

	t.Run("no transition means no rollover", func(t *testing.T) {
		h, mockMaintenances, mockUsers, _, _ := newMaintenanceTestHandler()
		mockUsers.On("FindByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

		current := &models.Maintenance{
			ID:         maintenanceID,
			ClientName: "Acme",
			ServiceDates: []models.ServiceDate{
				{ServiceDate: serviceDay(2025, time.January, 10), IsCompleted: true, Month: 1, Year: 2025},
			},
			CreatedBy: actor,
		}
		mockMaintenances.On("FindByID", mock.Anything, maintenanceID.Hex()).Return(current, nil)
		mockMaintenances.On("Replace", mock.Anything, maintenanceID.Hex(), mock.MatchedBy(func(m models.Maintenance) bool {
			return len(m.ServiceDates) == 1
		})).Return(current, nil)

		req := authedRequest("PUT", "/api/maintenances/"+maintenanceID.Hex(), map[string]interface{}{
			"serviceDates": []map[string]interface{}{
				{"serviceDate": "2025-01-10T00:00:00Z", "isCompleted": true},
			},
		}, actor)
		req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
		w := httptest.NewRecorder()
		h.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockMaintenances.AssertExpectations(t)
	})
}

func TestMaintenanceAssignUsers(t *testing.T) {
	actor := primitive.NewObjectID()
	maintenanceID := primitive.NewObjectID()

	t.Run("replaces the assignment set and notifies assignees", func(t *testing.T) {
		h, mockMaintenances, mockUsers, push, mail := newMaintenanceTestHandler()
		assignee := models.User{
			ID:        primitive.NewObjectID(),
			Name:      "worker",
			Email:     "worker@example.com",
			Role:      models.RoleUser,
			Status:    models.ApprovalApproved,
			PushToken: "push-token-9",
		}
		mockUsers.On("FindByIDs", mock.Anything, []primitive.ObjectID{assignee.ID}).Return([]models.User{assignee}, nil)
		mockUsers.On("FindByIDs", mock.Anything, mock.Anything).Return([]models.User{}, nil).Maybe()

		current := &models.Maintenance{ID: maintenanceID, ClientName: "Acme", Status: models.StatusPending, CreatedBy: actor}
		updated := &models.Maintenance{ID: maintenanceID, ClientName: "Acme", Users: []primitive.ObjectID{assignee.ID}, Status: models.StatusInProgress, CreatedBy: actor}
		mockMaintenances.On("FindByID", mock.Anything, maintenanceID.Hex()).Return(current, nil)
		mockMaintenances.On("Replace", mock.Anything, maintenanceID.Hex(), mock.MatchedBy(func(m models.Maintenance) bool {
			return len(m.Users) == 1 && m.Users[0] == assignee.ID && m.Status == models.StatusInProgress
		})).Return(updated, nil)

		req := authedRequest("POST", "/api/maintenances/"+maintenanceID.Hex()+"/assign-users", map[string]interface{}{
			"userIds": []string{assignee.ID.Hex()},
		}, actor)
		req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
		w := httptest.NewRecorder()
		h.AssignUsers(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Users assigned successfully", decodeBody(t, w)["message"])
		mockMaintenances.AssertExpectations(t)

		assert.Len(t, push.batches, 1)
		assert.Equal(t, "push-token-9", push.batches[0][0].To)
		assert.Equal(t, []string{"worker@example.com"}, mail.sent)
	})

	t.Run("requires user ids", func(t *testing.T) {
		h, _, _, _, _ := newMaintenanceTestHandler()

		req := authedRequest("POST", "/api/maintenances/"+maintenanceID.Hex()+"/assign-users", map[string]interface{}{}, actor)
		req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
		w := httptest.NewRecorder()
		h.AssignUsers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User IDs are required", decodeBody(t, w)["message"])
	})

	t.Run("rejects ids that do not resolve", func(t *testing.T) {
		h, mockMaintenances, mockUsers, _, _ := newMaintenanceTestHandler()
		ghost := primitive.NewObjectID()
		mockMaintenances.On("FindByID", mock.Anything, maintenanceID.Hex()).Return(&models.Maintenance{ID: maintenanceID}, nil)
		mockUsers.On("FindByIDs", mock.Anything, []primitive.ObjectID{ghost}).Return([]models.User{}, nil)

		req := authedRequest("POST", "/api/maintenances/"+maintenanceID.Hex()+"/assign-users", map[string]interface{}{
			"userIds": []string{ghost.Hex()},
		}, actor)
		req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
		w := httptest.NewRecorder()
		h.AssignUsers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "One or more user IDs are invalid", decodeBody(t, w)["message"])
	})
}

func TestMaintenanceDelete(t *testing.T) {
	actor := primitive.NewObjectID()
	maintenanceID := primitive.NewObjectID()

	h, mockMaintenances, _, _, _ := newMaintenanceTestHandler()
	mockMaintenances.On("Delete", mock.Anything, maintenanceID.Hex()).Return(nil)

	req := authedRequest("DELETE", "/api/maintenances/"+maintenanceID.Hex(), nil, actor)
	req = mux.SetURLVars(req, map[string]string{"id": maintenanceID.Hex()})
	w := httptest.NewRecorder()
	h.Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maintenance deleted successfully", decodeBody(t, w)["message"])
	mockMaintenances.AssertExpectations(t)
}
