package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"parkhive/internal/api"
	"parkhive/internal/auth"
	"parkhive/internal/booking"
	"parkhive/internal/repository"
	"parkhive/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	bookingRepo := repository.NewBookingRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	jobRepo := repository.NewJobRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	stripeSvc := service.NewStripeService()
	senderSvc := service.NewSenderService()
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, paymentRepo, stripeSvc, senderSvc, booking.SystemClock())
	slotSvc := service.NewSlotService(slotRepo, facilityRepo)
	jobSvc := service.NewJobService(jobRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)

	bookingHandler := api.NewBookingHandler(bookingSvc)
	adminHandler := api.NewAdminHandler(bookingSvc, slotSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)
	stripeHandler := api.NewStripeWebhookHandler(stripeWebhookSecret, bookingSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{reference}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{reference}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/bookings/{reference}/extend", bookingHandler.ExtendBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{reference}/checkin", bookingHandler.CheckIn).Methods("POST")
	r.HandleFunc("/api/bookings/{reference}/checkout", bookingHandler.CheckOut).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/users", adminAuthHandler.CreateAdmin).Methods("POST")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{reference}/resolve", adminHandler.ResolveOverdue).Methods("POST")
	admin.HandleFunc("/facilities", adminHandler.CreateFacility).Methods("POST")
	admin.HandleFunc("/facilities", adminHandler.ListFacilities).Methods("GET")
	admin.HandleFunc("/facilities/{facility_id}/slots", adminHandler.ListSlots).Methods("GET")
	admin.HandleFunc("/slots", adminHandler.CreateSlot).Methods("POST")
	admin.HandleFunc("/slots/{id}", adminHandler.UpdateSlot).Methods("PUT")
	admin.HandleFunc("/slots/{id}/availability", adminHandler.SetSlotAvailability).Methods("PUT")

	c := cron.New()
	c.AddFunc("@every 5m", func() {
		if err := jobSvc.MarkOverdueBookings(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.AddFunc("@every 30m", func() {
		deleted, err := jobSvc.CleanupUnpaidBookings(2 * time.Hour)
		if err != nil {
			log.Printf("Cron Job error: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("Cron Job: Deleted %d unpaid bookings", deleted)
		}
	})
	c.Start()
	defer c.Stop()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{os.Getenv("CORS_ALLOWED_ORIGIN")}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
