package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/auth"
	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
)

// UserHandler handles account, session and approval requests.
type UserHandler struct {
	users    db.UserCollection
	tokens   *auth.Service
	notifier *notify.Service
	mail     notify.MailSender
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users db.UserCollection, tokens *auth.Service, notifier *notify.Service, mail notify.MailSender) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, notifier: notifier, mail: mail}
}

// Register creates an account in the Pending approval state.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !models.IsValidRole(req.Role) {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if req.Role == models.RoleHead && req.Department == "" {
		writeMessage(w, http.StatusBadRequest, "Department is required for head role")
		return
	}
	if req.Department != "" && !models.IsValidDepartment(req.Department) {
		writeMessage(w, http.StatusBadRequest, "Invalid department")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.users.FindByEmail(r.Context(), email); err == nil {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	user, err := h.users.Insert(r.Context(), models.User{
		Name:       req.Name,
		Email:      email,
		Phone:      req.Phone,
		Password:   hashed,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, M{
		"message": "Account created successfully. Please wait for approval.",
		"user":    user,
		"token":   token,
	})
}

// Login authenticates against the stored role and approval state.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if user.Role != req.Role {
		writeMessage(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if user.Status != models.ApprovalApproved {
		writeMessage(w, http.StatusBadRequest, "User not approved")
		return
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{
		"message": "Login successful",
		"user":    user,
		"token":   token,
		"role":    user.Role,
	})
}

// Profile returns the authenticated user.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.users.FindByID(r.Context(), actor.Hex())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{"user": user, "role": user.Role})
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// UpdateProfile updates the caller's own contact fields. Email changes are
// checked for uniqueness against every other account.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Email != nil && *req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if _, err := h.users.FindByEmailExcluding(r.Context(), email, actor.Hex()); err == nil {
			writeMessage(w, http.StatusBadRequest, "Email already in use")
			return
		} else if !errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		set["email"] = email
	}

	user, err := h.users.UpdateByID(r.Context(), actor.Hex(), bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{"message": "User updated successfully", "user": user})
}

// List returns approved users with the base role, for assignment pickers.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindByRolesAndStatus(r.Context(), []models.Role{models.RoleUser}, models.ApprovalApproved)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Pending returns accounts awaiting approval.
func (h *UserHandler) Pending(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindByStatus(r.Context(), models.ApprovalPending)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Approved returns every approved account.
func (h *UserHandler) Approved(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindByStatus(r.Context(), models.ApprovalApproved)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type changeStatusRequest struct {
	Status models.ApprovalStatus `json:"status"`
}

// ChangeStatus moves an account through the approval workflow. Approval
// triggers a welcome push and email to the account owner.
func (h *UserHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.IsValidApprovalStatus(req.Status) {
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	user, err := h.users.UpdateByID(r.Context(), id, bson.M{"$set": bson.M{"status": req.Status}})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Status == models.ApprovalApproved {
		h.notifier.NotifyUsers(r.Context(),
			[]primitive.ObjectID{user.ID},
			"Account Approved! 🎉",
			fmt.Sprintf("Welcome to TechnoTrends, %s! Your account has been approved.", user.Name),
			map[string]string{"type": "user_approved", "userId": user.ID.Hex()},
			"Account Approved - TechnoTrends",
			accountApprovedEmail(user))
	}

	writeMessage(w, http.StatusOK, "User status changed successfully")
}

// Delete removes an account permanently.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

type resetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword changes the caller's password after verifying the old one.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.FindByID(r.Context(), actor.Hex())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !auth.CheckPassword(req.OldPassword, user.Password) {
		writeMessage(w, http.StatusBadRequest, "Invalid old password")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.users.UpdateByID(r.Context(), actor.Hex(), bson.M{"$set": bson.M{"password": hashed}}); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully")
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a short-lived 6-digit reset code and emails it.
// The code is echoed in the response for the development clients.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No account found with this email address")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	expires := time.Now().Add(time.Minute)

	if _, err := h.users.UpdateByID(r.Context(), user.ID.Hex(), bson.M{
		"$set": bson.M{"resetCode": code, "resetCodeExpires": expires},
	}); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.mail.Send(email, "Password Reset - TechnoTrends", passwordResetEmail(user.Name, code)); err != nil {
		log.WithError(err).WithField("to", email).Error("failed to send reset code email")
		// Clear the code so a stale one cannot be replayed later
		if _, clearErr := h.users.UpdateByID(r.Context(), user.ID.Hex(), bson.M{
			"$unset": bson.M{"resetCode": 1, "resetCodeExpires": 1},
		}); clearErr != nil {
			log.WithError(clearErr).Error("failed to clear reset code")
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to send verification code. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, M{
		"message": fmt.Sprintf("Verification code sent to %s. Please check your email and enter the 6-digit code within 1 minute.", email),
		"code":    code,
	})
}

type verifyResetCodeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// VerifyResetCode redeems a reset code for a new password.
func (h *UserHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req verifyResetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Email, code, and new password are required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if user.ResetCode == "" || user.ResetCodeExpires == nil {
		writeMessage(w, http.StatusBadRequest, "No password reset request found")
		return
	}
	if user.ResetCode != req.Code {
		writeMessage(w, http.StatusBadRequest, "Invalid verification code")
		return
	}
	if time.Now().After(*user.ResetCodeExpires) {
		if _, err := h.users.UpdateByID(r.Context(), user.ID.Hex(), bson.M{
			"$unset": bson.M{"resetCode": 1, "resetCodeExpires": 1},
		}); err != nil {
			log.WithError(err).Error("failed to clear expired reset code")
		}
		writeMessage(w, http.StatusBadRequest, "Verification code has expired. Please request a new one.")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.users.UpdateByID(r.Context(), user.ID.Hex(), bson.M{
		"$set":   bson.M{"password": hashed},
		"$unset": bson.M{"resetCode": 1, "resetCodeExpires": 1},
	}); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully. You can now login with your new password.")
}

type updatePushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// UpdatePushToken stores the caller's device push token.
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req updatePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PushToken == "" {
		writeMessage(w, http.StatusBadRequest, "Push token is required")
		return
	}

	if _, err := h.users.UpdateByID(r.Context(), actor.Hex(), bson.M{"$set": bson.M{"pushToken": req.PushToken}}); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Push token updated successfully")
}
