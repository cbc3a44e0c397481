package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/handlers"
	"github.com/AnshRaj112/pinvent-backend/internal/middleware"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

// Deps carries everything the router needs. Limiter may be nil.
type Deps struct {
	Auth           *services.AuthService
	Products       *services.ProductService
	Limiter        *middleware.RedisRateLimiter
	AllowedOrigins []string
	Production     bool
	Logger         *zap.Logger
}

func NewRouter(d Deps) *chi.Mux {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(d.AllowedOrigins))
	if d.Production {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	auth := handlers.NewAuthHandler(d.Auth, log)
	requireAuth := middleware.RequireAuth(d.Auth)

	// Credential endpoints share a stricter per-IP budget.
	loginLimiter := middleware.NewLoginLimiter()
	credentials := func(r chi.Router) chi.Router {
		if d.Limiter != nil {
			r = r.With(d.Limiter.Middleware)
		}
		if d.Production {
			r = r.With(loginLimiter.Middleware)
		}
		return r
	}

	r.Route("/api/users", func(r chi.Router) {
		cr := credentials(r)
		cr.Post("/register", auth.Register)
		cr.Post("/login", auth.Login)
		cr.Post("/forgotpassword", auth.ForgotPassword)
		cr.Put("/resetpassword/{resetToken}", auth.ResetPassword)

		r.Get("/logout", auth.Logout)
		r.Get("/loggedin", auth.LoginStatus)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/getuser", auth.GetUser)
			r.Patch("/updateuser", auth.UpdateUser)
			r.Patch("/changepassword", auth.ChangePassword)
		})
	})

	if d.Products != nil {
		products := handlers.NewProductHandler(d.Products, log)
		r.Route("/api/products", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", products.Create)
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
			r.Delete("/{id}", products.Delete)
			r.Patch("/{id}", products.Update)
		})
	}

	return r
}
