package controllers

import (
	"net/http"
	"time"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	"github.com/mercantile-app/mercantile-backend/internal/users"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
)

type addressPayload struct {
	Nickname string `json:"nickname"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Zip      string `json:"zip" validate:"required"`
}

type addressResponse struct {
	ID        int64     `json:"id"`
	Nickname  string    `json:"nickname"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	CreatedAt time.Time `json:"created_at"`
}

func newAddressResponse(address models.Address) addressResponse {
	return addressResponse{
		ID:        address.ID,
		Nickname:  address.Nickname,
		Street:    address.Street,
		City:      address.City,
		State:     address.State,
		Zip:       address.Zip,
		CreatedAt: address.CreatedAt,
	}
}

// AddressList returns the authenticated user's saved shipping addresses.
func AddressList(repo *users.AddressRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		addresses, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses"))
			return
		}

		out := make([]addressResponse, 0, len(addresses))
		for _, address := range addresses {
			out = append(out, newAddressResponse(address))
		}
		responses.WriteSuccess(w, out)
	}
}

// AddressCreate saves a new shipping address for the authenticated user.
func AddressCreate(repo *users.AddressRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address := &models.Address{
			UserID:   middleware.UserIDFromContext(r.Context()),
			Nickname: payload.Nickname,
			Street:   payload.Street,
			City:     payload.City,
			State:    payload.State,
			Zip:      payload.Zip,
		}
		if address.Nickname == "" {
			address.Nickname = "home"
		}

		created, err := repo.Create(r.Context(), address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAddressResponse(*created))
	}
}
