package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/product-catalog-api/internal/core/domain/product"
	"github.com/avatarctic/product-catalog-api/internal/infrastructure/httpserver/response"
)

const invalidBodyMessage = "Invalid request body"

// productID parses the :id path parameter. A malformed id cannot name any
// product, so it fails the same way a missing one does.
func productID(c echo.Context, op product.Operation) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, product.NewOperationError(op, product.ErrNotFound)
	}
	return id, nil
}

func (s *Server) listProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	q := product.NewListQuery(page, perPage, c.QueryParam("search"), s.config.DefaultPerPage, s.config.MaxPerPage)

	result, err := s.productService.ListProducts(c.Request().Context(), q)
	if err != nil {
		return err
	}

	paginator := response.NewPaginator(result.Total, result.Page, result.PerPage, response.RequestURL(c, s.config.PublicBaseURL))
	return response.Write(c, response.Success(result.Items, paginator))
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := productID(c, product.OpGet)
	if err != nil {
		return err
	}
	p, err := s.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.Write(c, response.Success(p, nil))
}

func (s *Server) createProduct(c echo.Context) error {
	var req product.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMessage)
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := s.productService.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return response.Write(c, response.Created(p))
}

func (s *Server) updateProduct(c echo.Context) error {
	id, err := productID(c, product.OpUpdate)
	if err != nil {
		return err
	}
	var req product.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, invalidBodyMessage)
	}
	req.Normalize()
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := s.productService.UpdateProduct(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return response.Write(c, response.Success(p, nil))
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := productID(c, product.OpDelete)
	if err != nil {
		return err
	}
	if err := s.productService.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return response.Write(c, response.NoContent())
}
