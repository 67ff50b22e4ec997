package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/procesos/product-directory/pkg/e"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse сопоставляет доменную ошибку со статусом и безопасным сообщением.
func ToHTTPResponse(err error) (int, string) {
	switch {
	// Ошибка внешнего каталога может нести в себе и причину (например, ErrInvalidPrice)
	case errors.Is(err, e.ErrCatalogUnavailable):
		return http.StatusBadGateway, e.ErrCatalogUnavailable.Error()
	case errors.Is(err, e.ErrInvalidRequest):
		return http.StatusBadRequest, e.ErrInvalidRequest.Error()
	case errors.Is(err, e.ErrInvalidID):
		return http.StatusBadRequest, e.ErrInvalidID.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, e.ErrUnauthenticated.Error()
	case errors.Is(err, e.ErrProductNotBelongUser):
		return http.StatusForbidden, e.ErrProductNotBelongUser.Error()
	case errors.Is(err, e.ErrNoDataFound):
		return http.StatusNotFound, e.ErrNoDataFound.Error()
	case errors.Is(err, e.ErrUserNotFound):
		return http.StatusNotFound, e.ErrUserNotFound.Error()
	case errors.Is(err, e.ErrRouteNotFound):
		return http.StatusNotFound, e.ErrRouteNotFound.Error()
	case errors.Is(err, e.ErrProductAlreadyExists):
		return http.StatusConflict, e.ErrProductAlreadyExists.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса, отклоняя неизвестные поля и мусор после объекта.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrInvalidRequest, err))
	}
	if dec.More() {
		return e.Wrap(whereami.WhereAmI(), e.ErrInvalidRequest)
	}

	return nil
}

func parseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap("id="+raw, e.ErrInvalidID)
	}
	return id, nil
}
