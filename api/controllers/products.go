package controllers

import (
	"net/http"

	"github.com/angelmondragon/clothing-store-backend/api/responses"
	"github.com/angelmondragon/clothing-store-backend/api/validators"
	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
)

const maxSearchLength = 100

func productsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
}

// ProductList serves the filtered, paginated catalog.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		input, err := product.ParseListQuery(product.RawListQuery{
			Search:   validators.SanitizeString(q.Get("search"), maxSearchLength),
			Category: q.Get("category"),
			Size:     q.Get("size"),
			MinPrice: q.Get("minPrice"),
			MaxPrice: q.Get("maxPrice"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves one product.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}

		id, err := validators.ParseUUIDParam(r, "id", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductCategories lists the categories that currently have products.
func ProductCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productsUnavailable())
			return
		}

		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}
