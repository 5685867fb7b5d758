package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/technotrends/workflow-backend/internal/auth"
	"github.com/technotrends/workflow-backend/internal/config"
	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/events"
	"github.com/technotrends/workflow-backend/internal/handlers"
	"github.com/technotrends/workflow-backend/internal/invoicing"
	"github.com/technotrends/workflow-backend/internal/middleware"
	"github.com/technotrends/workflow-backend/internal/notify"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	client, err := db.ConnectMongo(cfg.Mongo.URI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("connected to MongoDB")

	collections := db.NewCollections(client.Database(cfg.Mongo.Database))

	tokens, err := auth.NewService(cfg.JWT.Secret)
	if err != nil {
		log.WithError(err).Fatal("failed to create token service")
	}

	mail := notify.NewSMTPMailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password)
	push := notify.NewHTTPPushSender(cfg.Push.Endpoint)
	notifier := notify.NewService(collections.Users, push, mail)

	bus := events.NewBus()
	bus.SubscribeReferencesPopulated(invoicing.NewProvisioner(collections.Invoices, collections.Projects, notifier))

	authMW := middleware.NewAuth(tokens, collections.Users)

	userHandler := handlers.NewUserHandler(collections.Users, tokens, notifier, mail)
	projectHandler := handlers.NewProjectHandler(collections.Projects, collections.Users, bus, notifier)
	complaintHandler := handlers.NewComplaintHandler(collections.Complaints, collections.Users, notifier)
	invoiceHandler := handlers.NewInvoiceHandler(collections.Invoices, collections.Projects, collections.Users, notifier)
	maintenanceHandler := handlers.NewMaintenanceHandler(collections.Maintenances, collections.Users, notifier)
	dashboardHandler := handlers.NewDashboardHandler(collections.Projects, collections.Complaints, collections.Invoices, collections.Maintenances, collections.Users)

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is running!"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// User routes; registration and password recovery are public.
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", userHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/forgot-password", userHandler.ForgotPassword).Methods(http.MethodPost)
	users.HandleFunc("/verify-reset-code", userHandler.VerifyResetCode).Methods(http.MethodPost)
	users.Handle("/update-push-token", authMW.RequireToken(http.HandlerFunc(userHandler.UpdatePushToken))).Methods(http.MethodPost)
	users.Handle("/profile", authMW.RequireToken(http.HandlerFunc(userHandler.Profile))).Methods(http.MethodGet)
	users.Handle("/profile", authMW.RequireToken(http.HandlerFunc(userHandler.UpdateProfile))).Methods(http.MethodPut)
	users.Handle("/reset-password", authMW.RequireToken(http.HandlerFunc(userHandler.ResetPassword))).Methods(http.MethodPut)
	users.Handle("", authMW.RequireToken(http.HandlerFunc(userHandler.List))).Methods(http.MethodGet)
	users.Handle("/pending", authMW.RequireToken(authMW.RequireAdmin(http.HandlerFunc(userHandler.Pending)))).Methods(http.MethodGet)
	users.Handle("/pending/{id}", authMW.RequireToken(authMW.RequireAdmin(http.HandlerFunc(userHandler.ChangeStatus)))).Methods(http.MethodPut)
	users.Handle("/approved", authMW.RequireToken(authMW.RequireAdmin(http.HandlerFunc(userHandler.Approved)))).Methods(http.MethodGet)
	users.Handle("/{id}", authMW.RequireToken(authMW.RequireAdmin(http.HandlerFunc(userHandler.Delete)))).Methods(http.MethodDelete)

	// Project routes, all behind the token gate.
	projects := api.PathPrefix("/projects").Subrouter()
	projects.Use(authMW.RequireToken)
	projects.Handle("", http.HandlerFunc(projectHandler.List)).Methods(http.MethodGet)
	projects.Handle("/user", http.HandlerFunc(projectHandler.ListByUser)).Methods(http.MethodGet)
	projects.Handle("/status/{status}", http.HandlerFunc(projectHandler.ListByStatus)).Methods(http.MethodGet)
	projects.Handle("/{id}", http.HandlerFunc(projectHandler.Get)).Methods(http.MethodGet)
	projects.Handle("", authMW.RequireHead(http.HandlerFunc(projectHandler.Create))).Methods(http.MethodPost)
	projects.Handle("/{id}/assign-users", authMW.RequireHead(http.HandlerFunc(projectHandler.AssignUsers))).Methods(http.MethodPost)
	projects.Handle("/{id}", http.HandlerFunc(projectHandler.Update)).Methods(http.MethodPut)
	projects.Handle("/{id}", authMW.RequireAdmin(http.HandlerFunc(projectHandler.Delete))).Methods(http.MethodDelete)

	// Complaint routes.
	complaints := api.PathPrefix("/complaints").Subrouter()
	complaints.Use(authMW.RequireToken)
	complaints.Handle("", http.HandlerFunc(complaintHandler.List)).Methods(http.MethodGet)
	complaints.Handle("/user", http.HandlerFunc(complaintHandler.ListByUser)).Methods(http.MethodGet)
	complaints.Handle("/status/{status}", http.HandlerFunc(complaintHandler.ListByStatus)).Methods(http.MethodGet)
	complaints.Handle("/priority/{priority}", http.HandlerFunc(complaintHandler.ListByPriority)).Methods(http.MethodGet)
	complaints.Handle("/{id}", http.HandlerFunc(complaintHandler.Get)).Methods(http.MethodGet)
	complaints.Handle("", authMW.RequireHead(http.HandlerFunc(complaintHandler.Create))).Methods(http.MethodPost)
	complaints.Handle("/{id}/assign-users", authMW.RequireAdmin(http.HandlerFunc(complaintHandler.AssignUsers))).Methods(http.MethodPost)
	complaints.Handle("/{id}", http.HandlerFunc(complaintHandler.Update)).Methods(http.MethodPut)
	complaints.Handle("/{id}", authMW.RequireAdmin(http.HandlerFunc(complaintHandler.Delete))).Methods(http.MethodDelete)

	// Invoice routes.
	invoices := api.PathPrefix("/invoices").Subrouter()
	invoices.Use(authMW.RequireToken)
	invoices.Handle("", http.HandlerFunc(invoiceHandler.List)).Methods(http.MethodGet)
	invoices.Handle("/overdue", http.HandlerFunc(invoiceHandler.ListOverdue)).Methods(http.MethodGet)
	invoices.Handle("/status/{status}", http.HandlerFunc(invoiceHandler.ListByStatus)).Methods(http.MethodGet)
	invoices.Handle("/payment-terms/{paymentTerms}", http.HandlerFunc(invoiceHandler.ListByPaymentTerms)).Methods(http.MethodGet)
	invoices.Handle("/project/{projectId}", http.HandlerFunc(invoiceHandler.ListByProject)).Methods(http.MethodGet)
	invoices.Handle("/{id}", http.HandlerFunc(invoiceHandler.Get)).Methods(http.MethodGet)
	invoices.Handle("", authMW.RequireHead(http.HandlerFunc(invoiceHandler.Create))).Methods(http.MethodPost)
	invoices.Handle("/{id}", authMW.RequireHead(http.HandlerFunc(invoiceHandler.Update))).Methods(http.MethodPut)
	invoices.Handle("/{id}", authMW.RequireAdmin(http.HandlerFunc(invoiceHandler.Delete))).Methods(http.MethodDelete)

	// Maintenance routes.
	maintenances := api.PathPrefix("/maintenances").Subrouter()
	maintenances.Use(authMW.RequireToken)
	maintenances.Handle("/user", http.HandlerFunc(maintenanceHandler.ListByUser)).Methods(http.MethodGet)
	maintenances.Handle("/upcoming", http.HandlerFunc(maintenanceHandler.ListUpcoming)).Methods(http.MethodGet)
	maintenances.Handle("/status/{status}", http.HandlerFunc(maintenanceHandler.ListByStatus)).Methods(http.MethodGet)
	maintenances.Handle("", authMW.RequireHead(http.HandlerFunc(maintenanceHandler.List))).Methods(http.MethodGet)
	maintenances.Handle("", authMW.RequireHead(http.HandlerFunc(maintenanceHandler.Create))).Methods(http.MethodPost)
	maintenances.Handle("/{id}", http.HandlerFunc(maintenanceHandler.Get)).Methods(http.MethodGet)
	maintenances.Handle("/{id}", http.HandlerFunc(maintenanceHandler.Update)).Methods(http.MethodPut)
	maintenances.Handle("/{id}", authMW.RequireAdmin(http.HandlerFunc(maintenanceHandler.Delete))).Methods(http.MethodDelete)
	maintenances.Handle("/{id}/assign-users", authMW.RequireHead(http.HandlerFunc(maintenanceHandler.AssignUsers))).Methods(http.MethodPost)

	// Dashboard routes.
	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(authMW.RequireToken)
	dashboard.Handle("", authMW.RequireHead(http.HandlerFunc(dashboardHandler.Overview))).Methods(http.MethodGet)
	dashboard.Handle("/user", http.HandlerFunc(dashboardHandler.UserOverview)).Methods(http.MethodGet)

	handler := middleware.NewCORS(cfg)(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("addr", addr).Info("HTTP server listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
