package handler

import (
	"errors"
	"net/http"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/internal/service"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	products := r.Group("/products")
	{
		products.POST("/", h.CreateProduct)
		products.GET("/", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, err)
		return
	}

	req, err := domain.DecodeCreateProductRequest(body)
	if err != nil {
		h.fail(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, err)
		return
	}

	req, err := domain.DecodeUpdateProductRequest(body)
	if err != nil {
		h.fail(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	if _, err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// productID parses the :id path parameter and answers 422 unless it is a
// version 4 UUID.
func (h *ProductHandler) productID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")

	id, err := uuid.Parse(raw)
	if err != nil {
		pathError(c, "uuid_parsing", "Input should be a valid UUID", raw)
		return uuid.Nil, false
	}
	if id.Version() != 4 {
		pathError(c, "uuid_version", "UUID version 4 expected", raw)
		return uuid.Nil, false
	}
	return id, true
}

func pathError(c *gin.Context, kind, msg, input string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []domain.FieldError{{
			Type:  kind,
			Loc:   []string{"path", "id"},
			Msg:   msg,
			Input: input,
		}},
	})
}

func (h *ProductHandler) fail(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationErr.Errors})
		return
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound.Message})
		return
	}

	logging.Error(c.Request.Context(), h.logger, "Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
}
