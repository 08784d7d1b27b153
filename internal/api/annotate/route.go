package annotate

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers annotation routes on the provided router. The
// middlewares only wrap these routes.
func RegisterRoutes(r fiber.Router, h *Handler, middlewares ...fiber.Handler) {
	grp := r.Group("/annotate")
	for _, mw := range middlewares {
		grp.Use(mw)
	}

	grp.Post("/", h.HandleAnnotate)
}
