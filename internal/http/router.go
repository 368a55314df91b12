package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garage-backend/internal/handlers"
	"garage-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	clientHandler *handlers.ClientHandler,
	vehicleHandler *handlers.VehicleHandler,
	catalogHandler *handlers.CatalogHandler,
	invoiceHandler *handlers.InvoiceHandler,
	quotationHandler *handlers.QuotationHandler,
	razorpayHandler *handlers.RazorpayHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Public API routes - shared invoice links and gateway callbacks
	r.HandleFunc("/api/public/invoices/{accessCode}", invoiceHandler.GetPublicInvoice).Methods("GET")
	r.HandleFunc("/api/payment/status", razorpayHandler.CheckStatus).Methods("GET")
	r.HandleFunc("/api/payment/verify", razorpayHandler.VerifyPayment).Methods("POST")
	r.HandleFunc("/api/payment/webhook", razorpayHandler.HandleWebhook).Methods("POST")

	// Protected API routes - Profile
	meAPI := r.PathPrefix("/api/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Clients
	clientsAPI := r.PathPrefix("/api/clients").Subrouter()
	clientsAPI.Use(authMiddleware.Authenticate)
	clientsAPI.HandleFunc("", clientHandler.ListClients).Methods("GET")
	clientsAPI.HandleFunc("", clientHandler.CreateClient).Methods("POST")
	clientsAPI.HandleFunc("/{id}", clientHandler.GetClient).Methods("GET")
	clientsAPI.HandleFunc("/{id}", clientHandler.UpdateClient).Methods("PUT")
	clientsAPI.HandleFunc("/{id}", clientHandler.DeleteClient).Methods("DELETE")

	// Protected API routes - Vehicles
	vehiclesAPI := r.PathPrefix("/api/vehicles").Subrouter()
	vehiclesAPI.Use(authMiddleware.Authenticate)
	vehiclesAPI.HandleFunc("", vehicleHandler.ListVehicles).Methods("GET")
	vehiclesAPI.HandleFunc("", vehicleHandler.CreateVehicle).Methods("POST")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.GetVehicle).Methods("GET")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.UpdateVehicle).Methods("PUT")
	vehiclesAPI.HandleFunc("/{id}", vehicleHandler.DeleteVehicle).Methods("DELETE")

	// Protected API routes - Catalog
	catalogAPI := r.PathPrefix("/api/catalog").Subrouter()
	catalogAPI.Use(authMiddleware.Authenticate)
	catalogAPI.HandleFunc("/services", catalogHandler.ListServices).Methods("GET")
	catalogAPI.HandleFunc("/services", catalogHandler.CreateService).Methods("POST")
	catalogAPI.HandleFunc("/services/{id}", catalogHandler.GetService).Methods("GET")
	catalogAPI.HandleFunc("/services/{id}", catalogHandler.UpdateService).Methods("PUT")
	catalogAPI.HandleFunc("/services/{id}", catalogHandler.DeleteService).Methods("DELETE")
	catalogAPI.HandleFunc("/parts", catalogHandler.ListParts).Methods("GET")
	catalogAPI.HandleFunc("/parts", catalogHandler.CreatePart).Methods("POST")
	catalogAPI.HandleFunc("/parts/{id}", catalogHandler.GetPart).Methods("GET")
	catalogAPI.HandleFunc("/parts/{id}", catalogHandler.UpdatePart).Methods("PUT")
	catalogAPI.HandleFunc("/parts/{id}", catalogHandler.DeletePart).Methods("DELETE")

	// Protected API routes - Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.CreateInvoice).Methods("POST")
	invoicesAPI.HandleFunc("", invoiceHandler.ListInvoices).Methods("GET")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.GetInvoice).Methods("GET")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.UpdateInvoice).Methods("PUT")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.DeleteInvoice).Methods("DELETE")
	invoicesAPI.HandleFunc("/{id}/status", invoiceHandler.UpdatePaymentStatus).Methods("PATCH")
	invoicesAPI.HandleFunc("/{id}/payments", invoiceHandler.RecordPayment).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/payments", invoiceHandler.GetPaymentHistory).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/pdf", invoiceHandler.DownloadPDF).Methods("GET")
	invoicesAPI.HandleFunc("/{id}/payment/order", razorpayHandler.CreateOrder).Methods("POST")

	// Protected API routes - Quotations
	quotationsAPI := r.PathPrefix("/api/quotations").Subrouter()
	quotationsAPI.Use(authMiddleware.Authenticate)
	quotationsAPI.HandleFunc("", quotationHandler.CreateQuotation).Methods("POST")
	quotationsAPI.HandleFunc("", quotationHandler.ListQuotations).Methods("GET")
	quotationsAPI.HandleFunc("/stats", quotationHandler.GetStats).Methods("GET")
	quotationsAPI.HandleFunc("/{id}", quotationHandler.GetQuotation).Methods("GET")
	quotationsAPI.HandleFunc("/{id}", quotationHandler.UpdateQuotation).Methods("PUT")
	quotationsAPI.HandleFunc("/{id}", quotationHandler.DeleteQuotation).Methods("DELETE")
	quotationsAPI.HandleFunc("/{id}/accept", quotationHandler.Accept).Methods("POST")
	quotationsAPI.HandleFunc("/{id}/reject", quotationHandler.Reject).Methods("POST")
	quotationsAPI.HandleFunc("/{id}/expire", quotationHandler.Expire).Methods("POST")
	quotationsAPI.HandleFunc("/{id}/convert", quotationHandler.Convert).Methods("POST")
	quotationsAPI.HandleFunc("/{id}/versions", quotationHandler.CreateRevision).Methods("POST")
	quotationsAPI.HandleFunc("/{id}/versions", quotationHandler.ListRevisions).Methods("GET")

	// Protected API routes - Monitoring (admin only)
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.RequireAdmin)
	monitoringAPI.HandleFunc("/system", monitoringHandler.GetSystemStats).Methods("GET")
	monitoringAPI.HandleFunc("/archive", monitoringHandler.GetArchiveStatus).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
