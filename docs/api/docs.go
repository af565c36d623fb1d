// Package api registers the Swagger document served at /swagger. Regenerate
// it from the handler annotations with `swag init -g cmd/server/main.go -o docs/api`.
package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/localnerve/wpq-drafts",
            "email": "info@localnerve.com"
        },
        "license": {
            "name": "AGPL-3.0",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/draft": {
            "get": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Get the current draft", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}}},
            "delete": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Discard the draft", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}}}
        },
        "/draft/{section}": {
            "patch": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Update a draft section", "parameters": [{"type": "string", "name": "section", "in": "path", "required": true}, {"name": "patch", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/draft/continuity": {
            "post": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Add a continuity entry", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.DraftState"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/draft/continuity/{id}": {
            "patch": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Update a continuity entry", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "patch", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}}},
            "delete": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Remove a continuity entry", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/draft/form-no": {
            "put": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Set the form number suffix", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.FormNoRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}}}
        },
        "/draft/files/{target}": {
            "post": {"security": [{"CookieAuth": []}], "consumes": ["multipart/form-data"], "tags": ["Draft"], "summary": "Upload a photo or signature", "parameters": [{"type": "string", "name": "target", "in": "path", "required": true}, {"type": "string", "name": "entry", "in": "query"}, {"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}, "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}, "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}},
            "delete": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Remove a photo or signature", "parameters": [{"type": "string", "name": "target", "in": "path", "required": true}, {"type": "string", "name": "entry", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DraftState"}}}}
        },
        "/draft/validate/{section}": {
            "get": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Validate a draft section", "parameters": [{"type": "string", "name": "section", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/validation.Result"}}}}
        },
        "/draft/submit": {
            "post": {"security": [{"CookieAuth": []}], "tags": ["Draft"], "summary": "Submit the draft", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.SubmitResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/previews/{id}": {
            "get": {"security": [{"CookieAuth": []}], "produces": ["image/png"], "tags": ["Draft"], "summary": "Stream an uploaded preview", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        },
        "/records": {
            "get": {"security": [{"CookieAuth": []}], "tags": ["Records"], "summary": "Search submitted records", "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "pageSize", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.SearchResult"}}}}
        },
        "/records/{id}": {
            "get": {"security": [{"CookieAuth": []}], "tags": ["Records"], "summary": "Get a submitted record", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Record"}}}},
            "delete": {"security": [{"CookieAuth": []}], "tags": ["Records"], "summary": "Delete a submitted record", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponseStruct"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/records/{id}/certificate": {
            "get": {"security": [{"CookieAuth": []}], "tags": ["Records"], "summary": "Get the printable certificate of a record", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/attachments/{id}": {
            "get": {"security": [{"CookieAuth": []}], "produces": ["image/png"], "tags": ["Records"], "summary": "Stream a stored photo or signature", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        }
    },
    "definitions": {
        "handlers.DraftState": {"type": "object", "properties": {"draft": {"type": "object"}, "progress": {"type": "integer"}, "sections": {"type": "object", "additionalProperties": {"type": "boolean"}}, "suggestedCodeYear": {"type": "string"}}},
        "handlers.FormNoRequest": {"type": "object", "properties": {"suffix": {"type": "string"}}},
        "handlers.SubmitResponse": {"type": "object", "properties": {"ok": {"type": "boolean"}, "record": {"$ref": "#/definitions/services.Record"}}},
        "services.Record": {"type": "object", "properties": {"id": {"type": "string"}, "certificateNo": {"type": "string"}, "welderName": {"type": "string"}, "form": {"type": "object"}}},
        "services.SearchResult": {"type": "object", "properties": {"records": {"type": "array", "items": {"$ref": "#/definitions/services.Record"}}, "total": {"type": "integer"}, "page": {"type": "integer"}, "pageSize": {"type": "integer"}}},
        "validation.Result": {"type": "object", "properties": {"success": {"type": "boolean"}, "errors": {"type": "object", "additionalProperties": {"type": "string"}}}},
        "utils.ErrorResponseStruct": {"type": "object", "properties": {"status": {"type": "integer"}, "message": {"type": "string"}, "ok": {"type": "boolean"}, "timestamp": {"type": "string"}, "url": {"type": "string"}, "type": {"type": "string"}, "errors": {"type": "object", "additionalProperties": {"type": "string"}}}},
        "utils.SuccessResponseStruct": {"type": "object", "properties": {"message": {"type": "string"}, "ok": {"type": "boolean"}, "timestamp": {"type": "string"}, "affectedRows": {"type": "integer"}}}
    },
    "securityDefinitions": {
        "CookieAuth": {"type": "apiKey", "name": "cookie_session", "in": "cookie"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "WPQ Drafts API",
	Description:      "Draft and record service for welder performance qualification certificates",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
