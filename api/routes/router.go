package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anadolubroker/sigorta-backend/api/controllers"
	webhookcontrollers "github.com/anadolubroker/sigorta-backend/api/controllers/webhooks"
	"github.com/anadolubroker/sigorta-backend/api/middleware"
	"github.com/anadolubroker/sigorta-backend/internal/documents"
	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/internal/policies"
	"github.com/anadolubroker/sigorta-backend/internal/policydoc"
	paymentwebhook "github.com/anadolubroker/sigorta-backend/internal/webhooks/payment"
	"github.com/anadolubroker/sigorta-backend/pkg/config"
	"github.com/anadolubroker/sigorta-backend/pkg/db"
	"github.com/anadolubroker/sigorta-backend/pkg/enums"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	offerService offers.Service,
	policyService policies.Service,
	documentService documents.Service,
	policyDocService policydoc.Service,
	webhookService *paymentwebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentWebhook(webhookService, cfg.Webhook, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", controllers.OfferCreate(offerService, logg))
			r.Get("/", controllers.OfferList(offerService, logg))
			r.Get("/{offerId}", controllers.OfferDetail(offerService, logg))
			r.Delete("/{offerId}", controllers.OfferDelete(offerService, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAgent, enums.ActorRoleAdmin)).
				Patch("/{offerId}/review", controllers.OfferReview(offerService, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleCustomer)).
				Post("/{offerId}/approval", controllers.OfferApproval(offerService, logg))
			r.Post("/{offerId}/payments", controllers.PaymentCreate(policyService, logg))
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", controllers.PolicyList(policyService, logg))
			r.Get("/{policyId}", controllers.PolicyDetail(policyService, logg))
			r.Get("/{policyId}/document", controllers.PolicyDocument(policyDocService, logg))
		})

		r.Get("/documents", controllers.DocumentList(documentService, logg))
	})

	return r
}
