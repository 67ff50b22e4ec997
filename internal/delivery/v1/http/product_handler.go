package http

import (
	"errors"
	"net/http"

	"github.com/procesos/product-directory/internal/auth"
	"github.com/procesos/product-directory/internal/usecase"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Создает товар от имени пользователя userId. Проверка дубликатов не выполняется.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			product	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		401		{object}	ErrorResponse	"Нет токена"
//	@Failure		404		{object}	ErrorResponse	"Пользователь не найден"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body CreateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		p.writeError(w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// importProduct
//
//	@Summary		Импорт товара из каталога
//	@Description	Забирает товар {id} из внешнего каталога и сохраняет его за вызывающим
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"ID товара в каталоге"
//	@Success		201	{object}	ProductResponse
//	@Failure		404	{object}	ErrorResponse	"Нет в каталоге"
//	@Failure		409	{object}	ErrorResponse	"Товар уже существует"
//	@Router			/products/import/{id} [post]
func (p *ProductHandler) importProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	product, err := p.productUsecase.CreateProductByID(r.Context(), principal, id)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// importAllProducts
//
//	@Summary		Импорт всего каталога
//	@Description	Импортирует все товары внешнего каталога. Любой существующий ID прерывает импорт целиком.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{array}		ProductResponse
//	@Failure		404	{object}	ErrorResponse	"Каталог пуст"
//	@Failure		409	{object}	ErrorResponse	"Товар уже существует"
//	@Router			/products/import [post]
func (p *ProductHandler) importAllProducts(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	products, err := p.productUsecase.ImportAllProducts(r.Context(), principal)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponses(products))
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse	"Не найден"
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	product, err := p.productUsecase.GetProductByID(r.Context(), id)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// listProducts
//
//	@Summary	Все товары
//	@Tags		products
//	@Produce	json
//	@Success	200	{array}		ProductResponse
//	@Failure	404	{object}	ErrorResponse	"Товаров нет"
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.GetAllProducts(r.Context())
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Перезаписывает title, price, description, category и image. Доступно только владельцу.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int						true	"ID товара"
//	@Param			product	body		UpdateProductRequest	true	"Новые значения"
//	@Success		200		{object}	ProductResponse
//	@Failure		403		{object}	ErrorResponse	"Чужой товар"
//	@Failure		404		{object}	ErrorResponse	"Не найден"
//	@Router			/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	var body UpdateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		p.writeError(w, r, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	product, err := p.productUsecase.UpdateProduct(r.Context(), principal, id, req)
	if err != nil {
		p.writeError(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

func (p *ProductHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	requestID := RequestIDFromContext(r.Context())

	switch {
	case code >= http.StatusInternalServerError && !errors.Is(err, e.ErrCatalogUnavailable):
		p.logger.Errorf(err, "request_id=%s %s %s", requestID, r.Method, r.URL.Path)
	default:
		p.logger.Warnf("request_id=%s %d %s", requestID, code, err.Error())
	}

	WriteError(w, err)
}
