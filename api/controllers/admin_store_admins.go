package controllers

import (
	"net/http"

	"github.com/partshub/autospares-backend/api/responses"
	"github.com/partshub/autospares-backend/api/validators"
	authsvc "github.com/partshub/autospares-backend/internal/auth"
	"github.com/partshub/autospares-backend/pkg/logger"
)

// AdminListStoreAdmins returns the staff accounts with the store_admin role.
func AdminListStoreAdmins(svc authsvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admins, err := svc.ListStoreAdmins(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, admins)
	}
}

// AdminCreateStoreAdmin provisions a store-admin account. A temporary
// password is generated and echoed when none is supplied.
func AdminCreateStoreAdmin(svc authsvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.CreateStoreAdminRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateStoreAdmin(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
