// Package docs содержит swagger-спецификацию HTTP API в формате swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Все товары",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}},
                    "404": {"description": "Товаров нет", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Создает товар от имени пользователя userId. Проверка дубликатов не выполняется.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Создание товара",
                "parameters": [
                    {"description": "Товар", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Нет токена", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Импортирует все товары внешнего каталога. Любой существующий ID прерывает импорт целиком.",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Импорт всего каталога",
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.ProductResponse"}}},
                    "404": {"description": "Каталог пуст", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Товар уже существует", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/import/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Забирает товар {id} из внешнего каталога и сохраняет его за вызывающим",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Импорт товара из каталога",
                "parameters": [
                    {"type": "integer", "description": "ID товара в каталоге", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "404": {"description": "Нет в каталоге", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Товар уже существует", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Товар по ID",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "404": {"description": "Не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Перезаписывает title, price, description, category и image. Доступно только владельцу.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Изменение товара",
                "parameters": [
                    {"type": "integer", "description": "ID товара", "name": "id", "in": "path", "required": true},
                    {"description": "Новые значения", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductResponse"}},
                    "403": {"description": "Чужой товар", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Не найден", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.CreateProductRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Mens Cotton Jacket"},
                "price": {"type": "number", "example": 55.99},
                "description": {"type": "string"},
                "category": {"type": "string", "example": "men's clothing"},
                "image": {"type": "string"}
            }
        },
        "http.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "example": "Mens Cotton Jacket"},
                "price": {"type": "number", "example": 55.99},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "image": {"type": "string"}
            }
        },
        "http.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "title": {"type": "string"},
                "price": {"type": "string", "example": "55.99"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "image": {"type": "string"},
                "userId": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer <JWT>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Product Directory API",
	Description:      "Каталог товаров пользователей с импортом из внешнего каталога.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
