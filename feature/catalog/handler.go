package catalog

import (
	"catalog-service/core/logger"
	"catalog-service/core/resilience"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog read API.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	products := app.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Get("/:id", h.HandleGetProduct)

	brands := app.Group("/brands")
	brands.Get("/:id", h.HandleGetBrand)
}

// HandleGetProduct returns product detail by identifier.
// @Summary Get Product Detail
// @Description Get detail for a single product.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product identifier"
// @Success 200 {object} catalog.ProductResponse "Product Detail"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /products/{id} [get]
func (h *Handler) HandleGetProduct(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid product id",
		})
	}

	resp, err := h.service.GetProduct(c.Context(), uint64(id))
	if err != nil {
		return writeError(c, l, "product detail failed", err)
	}
	return c.JSON(resp)
}

// HandleGetBrand returns brand detail by identifier.
// @Summary Get Brand Detail
// @Description Get detail for a single brand.
// @Tags brands
// @Accept json
// @Produce json
// @Param id path int true "Brand identifier"
// @Success 200 {object} catalog.BrandResponse "Brand Detail"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /brands/{id} [get]
func (h *Handler) HandleGetBrand(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid brand id",
		})
	}

	resp, err := h.service.GetBrand(c.Context(), uint64(id))
	if err != nil {
		return writeError(c, l, "brand detail failed", err)
	}
	return c.JSON(resp)
}

// HandleListProducts returns a brand-scoped, sort-ordered product page.
// @Summary List Products
// @Description List a brand's products with sort and pagination.
// @Tags products
// @Accept json
// @Produce json
// @Param brandId query int true "Brand identifier"
// @Param sort query string false "Sort key (likes_desc, price_asc, latest)"
// @Param page query int false "Zero-based page number"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} catalog.ProductPage "Product Page"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /products [get]
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	brandID := c.QueryInt("brandId")
	if brandID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "brandId is required",
		})
	}
	sort := c.Query("sort")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 0)

	resp, err := h.service.ListProducts(c.Context(), uint64(brandID), sort, page, size)
	if err != nil {
		return writeError(c, l, "product list failed", err)
	}
	return c.JSON(resp)
}

// writeError maps the failure taxonomy onto HTTP statuses. Callers only
// ever see a value, NotFound, a validation rejection, or ServiceUnavailable.
func writeError(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	switch resilience.KindOf(err) {
	case resilience.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case resilience.KindNonTransient:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case resilience.KindCircuitOpen:
		l.Warn(msg, zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	default:
		l.Error(msg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
