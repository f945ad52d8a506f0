// Package docs holds the OpenAPI document served by swaggerkit
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/meta/health": {
            "get": {
                "tags": ["Meta"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthResponse"}}}}}
            }
        },
        "/meta/ready": {
            "get": {
                "tags": ["Meta"],
                "summary": "Readiness probe with dependency checks",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}}}
            }
        },
        "/meta/version": {
            "get": {
                "tags": ["Meta"],
                "summary": "Build and version info",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BuildInfo"}}}}}
            }
        },
        "/meta/service": {
            "get": {
                "tags": ["Meta"],
                "summary": "Service info and uptime",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ServiceResponse"}}}}}
            }
        },
        "/scan/decode": {
            "post": {
                "tags": ["Scan"],
                "summary": "Run the multi-pass barcode decode pipeline on one image",
                "parameters": [{"name": "scan_debug", "in": "query", "schema": {"type": "string", "enum": ["0", "1"]}}],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/DecodeRequest"}}}},
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/DecodeResponse"}}}},
                    "422": {"description": "Image could not be decoded", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/scan/reports/last": {
            "get": {
                "tags": ["Scan"],
                "summary": "Most recent scan report of this process",
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ScanReport"}}}},
                    "404": {"description": "No report yet", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/scan/reports": {
            "get": {
                "tags": ["Scan"],
                "summary": "In-memory report history, newest first",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scan/reports/recent": {
            "get": {
                "tags": ["Scan"],
                "summary": "Persisted reports, newest first",
                "parameters": [{"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/portion/estimate": {
            "post": {
                "tags": ["Portion"],
                "summary": "Estimate grams for one detected food item",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/EstimateRequest"}}}},
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/PortionResult"}}}}}
            }
        },
        "/portion/batch": {
            "post": {
                "tags": ["Portion"],
                "summary": "Estimate grams for several items, results keep input order",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/BatchRequest"}}}},
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "components": {
        "schemas": {
            "HealthResponse": {
                "type": "object",
                "properties": {
                    "ok": {"type": "boolean"},
                    "service": {"type": "string", "example": "platewise-api"},
                    "started": {"type": "string"},
                    "now": {"type": "string"}
                }
            },
            "ReadyResponse": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "example": "ok"},
                    "now": {"type": "string"},
                    "checks": {"type": "array", "items": {"type": "object", "properties": {"name": {"type": "string"}, "status": {"type": "string"}, "error": {"type": "string"}}}}
                }
            },
            "BuildInfo": {
                "type": "object",
                "properties": {
                    "service": {"type": "string"},
                    "version": {"type": "string"},
                    "commit": {"type": "string"},
                    "date": {"type": "string"}
                }
            },
            "ServiceResponse": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "platewise-api"},
                    "started": {"type": "string"},
                    "uptime": {"type": "integer", "example": 300}
                }
            },
            "DecodeRequest": {
                "type": "object",
                "required": ["image_base64"],
                "properties": {
                    "image_base64": {"type": "string", "format": "byte"},
                    "device_pixel_ratio": {"type": "number", "example": 2},
                    "constraints": {"type": "object", "additionalProperties": true},
                    "expected": {"type": "string", "example": "036000291452"}
                }
            },
            "DecodeResponse": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "code": {"type": "string", "example": "036000291452"},
                    "format": {"type": "string", "example": "UPC-A"},
                    "normalized_as": {"type": "string"},
                    "check_digit_ok": {"type": "boolean"},
                    "attempts": {"type": "integer"},
                    "total_ms": {"type": "integer"},
                    "aborted": {"type": "boolean"},
                    "report": {"$ref": "#/components/schemas/ScanReport"}
                }
            },
            "ScanReport": {
                "type": "object",
                "properties": {
                    "started_at": {"type": "string"},
                    "finished_at": {"type": "string"},
                    "total_ms": {"type": "integer"},
                    "attempts": {"type": "array", "items": {"type": "object", "additionalProperties": true}},
                    "final": {"type": "object", "additionalProperties": true}
                }
            },
            "EstimateRequest": {
                "type": "object",
                "required": ["name"],
                "properties": {
                    "name": {"type": "string", "example": "asparagus"},
                    "category": {"type": "string", "example": "vegetable"},
                    "hints": {"type": "string", "example": "~6 spears"},
                    "bbox": {"type": "object", "properties": {"x": {"type": "number"}, "y": {"type": "number"}, "w": {"type": "number"}, "h": {"type": "number"}}},
                    "mask_area": {"type": "number"},
                    "plate_area": {"type": "number"}
                }
            },
            "BatchRequest": {
                "type": "object",
                "required": ["items"],
                "properties": {
                    "items": {"type": "array", "items": {"$ref": "#/components/schemas/EstimateRequest"}}
                }
            },
            "PortionResult": {
                "type": "object",
                "properties": {
                    "grams": {"type": "integer", "example": 95},
                    "source": {"type": "string", "example": "count"},
                    "range": {"type": "array", "items": {"type": "integer"}, "example": [81, 109]}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "platewise API",
	Description:      "Barcode scanning and portion estimation",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
