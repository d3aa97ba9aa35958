package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/partshub/autospares-backend/api/responses"
	"github.com/partshub/autospares-backend/api/validators"
	"github.com/partshub/autospares-backend/internal/catalog"
	"github.com/partshub/autospares-backend/pkg/logger"
	"github.com/partshub/autospares-backend/pkg/pagination"
)

const maxSearchLen = 120

// Home serves the storefront landing feed.
func Home(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, feed)
	}
}

// ListProducts serves the filtered product listing.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), listFilters(r), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves the product detail page by slug.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		product, err := svc.GetProduct(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListCategories serves the active categories with product counts.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func listFilters(r *http.Request) catalog.RawListFilters {
	q := r.URL.Query()
	return catalog.RawListFilters{
		Query:        validators.SanitizeString(q.Get("q"), maxSearchLen),
		CategorySlug: validators.SanitizeString(q.Get("category"), maxSearchLen),
		Make:         validators.SanitizeString(q.Get("make"), maxSearchLen),
		Condition:    validators.SanitizeString(q.Get("condition"), maxSearchLen),
		MinPrice:     validators.SanitizeString(q.Get("min_price"), maxSearchLen),
		MaxPrice:     validators.SanitizeString(q.Get("max_price"), maxSearchLen),
		Sort:         validators.SanitizeString(q.Get("sort"), maxSearchLen),
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 0, 1, 100000)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", 0, 1, pagination.MaxPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PerPage: perPage}, nil
}
