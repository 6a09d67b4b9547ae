// Package docs registers the OpenAPI description served at /swagger/*any.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "https://github.com/guttosm/brokerfees",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/guttosm/brokerfees",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/fees": {
            "get": {
                "description": "Returns the fee charged by a broker for one trade of the given amount, with a human-readable explanation",
                "produces": ["application/json"],
                "tags": ["fees"],
                "summary": "Compute a trading fee",
                "parameters": [
                    {"type": "string", "example": "Bolero", "description": "Broker name or alias", "name": "broker", "in": "query", "required": true},
                    {"type": "string", "example": "stocks", "description": "Instrument class", "name": "instrument", "in": "query", "required": true},
                    {"type": "string", "example": "2500", "description": "Trade amount in EUR", "name": "amount", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.FeeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "No fee rule", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/comparison": {
            "get": {
                "description": "Returns the fee of every broker for every instrument class and canonical transaction size",
                "produces": ["application/json"],
                "tags": ["comparison"],
                "summary": "Ground-truth comparison table",
                "parameters": [
                    {"type": "string", "example": "bolero,degiro", "description": "Comma-separated brokers, all when empty", "name": "brokers", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/personas": {
            "get": {
                "description": "Ranks brokers by total annual cost of ownership for each persona",
                "produces": ["application/json"],
                "tags": ["comparison"],
                "summary": "Annual cost per investor persona",
                "parameters": [
                    {"type": "string", "description": "Comma-separated brokers, all when empty", "name": "brokers", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.PersonaRanking"}}}
                }
            }
        },
        "/api/v1/tables/validate": {
            "post": {
                "description": "Checks every fee cell against the calculator and returns the mismatches with correction text. The run is recorded when history is enabled.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Validate a comparison table",
                "parameters": [
                    {"type": "string", "example": "api", "description": "Label stored with the run", "name": "source", "in": "query"},
                    {"description": "Comparison table", "name": "table", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.ValidationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tables/patch": {
            "post": {
                "description": "Overwrites flagged cells with the calculator's values. When errors are omitted the table is validated first.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Patch a comparison table",
                "parameters": [
                    {"description": "Table and optional errors", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.PatchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/tables/reconcile": {
            "post": {
                "description": "Replays candidate tables as successive generation attempts through the validate, correct and patch loop",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Reconcile generated tables",
                "parameters": [
                    {"description": "Candidates in generation order", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ReconcileRequest"}}
                ],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/dto.ReconcileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "No usable candidate", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/validations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["validations"],
                "summary": "Recent validation runs",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum runs (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationRun"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "History disabled", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/validations/{id}/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["validations"],
                "summary": "Errors of a validation run",
                "parameters": [
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationError"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "History disabled", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Always returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Returns ready if fee rules are loaded and the database is reachable",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "amount must be a non-negative number"},
                "message": {"type": "string", "example": "invalid amount"},
                "timestamp": {"type": "string", "example": "2025-09-11T10:00:00Z"}
            }
        },
        "dto.FeeResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 2500},
                "broker": {"type": "string", "example": "Bolero"},
                "explanation": {"type": "string", "example": "Flat fee EUR7.50 (amount EUR2,500 <= EUR2,500) -> EUR7.50"},
                "fee": {"type": "number", "example": 7.5},
                "instrument": {"type": "string", "example": "stocks"}
            }
        },
        "dto.TradeCost": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 500},
                "count_per_year": {"type": "integer", "example": 12},
                "fee_per_trade": {"type": "number", "example": 3},
                "instrument": {"type": "string", "example": "etfs"},
                "total": {"type": "number", "example": 36}
            }
        },
        "dto.PersonaCost": {
            "type": "object",
            "properties": {
                "broker": {"type": "string", "example": "Degiro Belgium"},
                "connectivity_cost_annual": {"type": "number", "example": 2.5},
                "custody_cost_annual": {"type": "number", "example": 0},
                "dividend_cost_annual": {"type": "number", "example": 0},
                "fx_cost_annual": {"type": "number", "example": 0},
                "rank": {"type": "integer", "example": 1},
                "subscription_cost_annual": {"type": "number", "example": 0},
                "total_annual_tco": {"type": "number", "example": 38.5},
                "trading_cost_details": {"type": "array", "items": {"$ref": "#/definitions/dto.TradeCost"}},
                "trading_costs": {"type": "number", "example": 36}
            }
        },
        "dto.PersonaRanking": {
            "type": "object",
            "properties": {
                "brokers": {"type": "array", "items": {"$ref": "#/definitions/dto.PersonaCost"}},
                "description": {"type": "string"},
                "key": {"type": "string", "example": "passive_investor"},
                "name": {"type": "string", "example": "Passive Investor"}
            }
        },
        "dto.ValidationError": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "5000"},
                "broker": {"type": "string", "example": "Bolero"},
                "expected": {"type": "number", "example": 15},
                "explanation": {"type": "string", "example": "1 x EUR15.00 per EUR10,000 slice -> EUR15.00"},
                "instrument": {"type": "string", "example": "stocks"},
                "observed": {"type": "number", "example": 10}
            }
        },
        "dto.ValidationResponse": {
            "type": "object",
            "properties": {
                "checkable": {"type": "boolean", "example": true},
                "checked": {"type": "integer", "example": 2},
                "correction": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationError"}},
                "passed": {"type": "integer", "example": 1},
                "run_id": {"type": "string", "example": "7b0c8a43-54a6-4f5e-9d8f-9a1f0e2b3c4d"},
                "valid": {"type": "boolean", "example": false}
            }
        },
        "dto.PatchRequest": {
            "type": "object",
            "required": ["table"],
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationError"}},
                "table": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.PatchResponse": {
            "type": "object",
            "properties": {
                "applied": {"type": "array", "items": {"$ref": "#/definitions/dto.ValidationError"}},
                "patched": {"type": "integer", "example": 1},
                "table": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.ReconcileRequest": {
            "type": "object",
            "required": ["candidates"],
            "properties": {
                "candidates": {"type": "array", "minItems": 1, "items": {"type": "object", "additionalProperties": true}},
                "prompt": {"type": "string", "example": "Build the Euronext Brussels fee table."}
            }
        },
        "dto.ReconcileResponse": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer", "example": 3},
                "corrections": {"type": "array", "items": {"type": "string"}},
                "outcome": {"type": "string", "example": "patched"},
                "patched": {"type": "integer", "example": 1},
                "result": {"$ref": "#/definitions/dto.ValidationResponse"},
                "table": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.ValidationRun": {
            "type": "object",
            "properties": {
                "checked": {"type": "integer", "example": 126},
                "created_at": {"type": "string", "example": "2025-09-11T10:00:00Z"},
                "error_count": {"type": "integer", "example": 0},
                "id": {"type": "string", "example": "7b0c8a43-54a6-4f5e-9d8f-9a1f0e2b3c4d"},
                "passed": {"type": "integer", "example": 126},
                "source": {"type": "string", "example": "api"},
                "valid": {"type": "boolean", "example": true}
            }
        }
    },
    "tags": [
        {"description": "Fee lookup with explanations", "name": "fees"},
        {"description": "Ground-truth comparison tables and persona rankings", "name": "comparison"},
        {"description": "Validation, patching and reconciliation of generated tables", "name": "tables"},
        {"description": "History of validation runs", "name": "validations"},
        {"description": "Liveness and readiness probes", "name": "health"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "brokerfees API",
	Description:      "Broker fee calculation and comparison-table validation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
