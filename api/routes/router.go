package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medirush/medirush-backend/api/controllers"
	"github.com/medirush/medirush-backend/api/middleware"
	authsvc "github.com/medirush/medirush-backend/internal/auth"
	cartsvc "github.com/medirush/medirush-backend/internal/cart"
	catalogsvc "github.com/medirush/medirush-backend/internal/catalog"
	checkoutsvc "github.com/medirush/medirush-backend/internal/checkout"
	directorysvc "github.com/medirush/medirush-backend/internal/directory"
	ordersvc "github.com/medirush/medirush-backend/internal/orders"
	prescriptionsvc "github.com/medirush/medirush-backend/internal/prescriptions"
	profilesvc "github.com/medirush/medirush-backend/internal/profiles"
	"github.com/medirush/medirush-backend/pkg/auth/session"
	"github.com/medirush/medirush-backend/pkg/config"
	"github.com/medirush/medirush-backend/pkg/db"
	"github.com/medirush/medirush-backend/pkg/logger"
	"github.com/medirush/medirush-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService authsvc.Service,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	prescriptionService prescriptionsvc.Service,
	profileService profilesvc.Service,
	directoryService directorysvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/otp/request", controllers.AuthRequestOTP(authService, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/otp/verify", controllers.AuthVerifyOTP(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", controllers.MedicinesList(catalogService, logg))
			r.Get("/categories", controllers.MedicineCategories(catalogService, logg))
			r.Get("/{id}", controllers.MedicineGet(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{medicineID}", controllers.CartSetQuantity(cartService, logg))
			r.Delete("/items/{medicineID}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Post("/checkout", controllers.CheckoutPlace(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(orderService, logg))
			r.Get("/{id}", controllers.OrderGet(orderService, logg))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.Post("/analyze", controllers.PrescriptionAnalyze(prescriptionService, cfg.Analysis, logg))
			r.Post("/merge", controllers.PrescriptionMerge(prescriptionService, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(profileService, logg))
			r.Put("/", controllers.ProfileUpdate(profileService, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressesList(profileService, logg))
				r.Post("/", controllers.AddressCreate(profileService, logg))
				r.Put("/{id}", controllers.AddressUpdate(profileService, logg))
				r.Delete("/{id}", controllers.AddressDelete(profileService, logg))
			})

			r.Route("/emergency-contacts", func(r chi.Router) {
				r.Get("/", controllers.ContactsList(profileService, logg))
				r.Post("/", controllers.ContactCreate(profileService, logg))
				r.Put("/{id}", controllers.ContactUpdate(profileService, logg))
				r.Delete("/{id}", controllers.ContactDelete(profileService, logg))
			})

			r.Route("/medical-history", func(r chi.Router) {
				r.Get("/", controllers.ConditionsList(profileService, logg))
				r.Post("/", controllers.ConditionCreate(profileService, logg))
				r.Put("/{id}", controllers.ConditionUpdate(profileService, logg))
				r.Delete("/{id}", controllers.ConditionDelete(profileService, logg))
			})

			r.Route("/allergies", func(r chi.Router) {
				r.Get("/", controllers.AllergiesList(profileService, logg))
				r.Post("/", controllers.AllergyCreate(profileService, logg))
				r.Put("/{id}", controllers.AllergyUpdate(profileService, logg))
				r.Delete("/{id}", controllers.AllergyDelete(profileService, logg))
			})
		})

		r.Route("/hospitals", func(r chi.Router) {
			r.Get("/", controllers.HospitalsList(directoryService, logg))
			r.Get("/{id}", controllers.HospitalGet(directoryService, logg))
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", controllers.DoctorsList(directoryService, logg))
			r.Get("/specialties", controllers.DoctorSpecialties(directoryService, logg))
			r.Get("/{id}", controllers.DoctorGet(directoryService, logg))
		})
	})

	return r
}
