package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrInvalidRequest = fmt.Errorf("invalid request body")
	ErrInvalidID      = fmt.Errorf("invalid product id")
	ErrInvalidPrice   = fmt.Errorf("invalid price")
	ErrPricePrecision = fmt.Errorf("price must have at most 2 decimal places")
	ErrMissingFields  = fmt.Errorf("missing required fields")

	// 401 Unauthorized
	ErrUnauthenticated = fmt.Errorf("authentication required")

	// 403 Forbidden
	ErrProductNotBelongUser = fmt.Errorf("product does not belong to user")

	// 404 Not Found
	ErrNoDataFound   = fmt.Errorf("no data found")
	ErrUserNotFound  = fmt.Errorf("user not found")
	ErrRouteNotFound = fmt.Errorf("route not found")

	// 409 Conflict
	ErrProductAlreadyExists = fmt.Errorf("product already exists")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки внешнего каталога
	ErrCatalogUnavailable = fmt.Errorf("catalog source unavailable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
