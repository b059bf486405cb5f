package rpc

import (
	"github.com/swaggo/swag"
)

const swaggerPath = "/swagger/"

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// apiDoc is the OpenAPI definition of the endpoints served under "/api/v1".
type apiDoc struct{}

func (apiDoc) ReadDoc() string {
	return apiDocJSON
}

const apiDocJSON = `{
  "swagger": "2.0",
  "info": {
    "title": "Stablecoin engine API",
    "description": "Executes stablecoin commands and queries the state of the mints.",
    "version": "1.0"
  },
  "basePath": "/api/v1",
  "consumes": ["application/json"],
  "produces": ["application/json"],
  "paths": {
    "/commands": {
      "post": {
        "summary": "Execute command",
        "parameters": [{"in": "body", "name": "command", "required": true, "schema": {"$ref": "#/definitions/CommandRequest"}}],
        "responses": {
          "200": {"description": "receipt of the executed command"},
          "400": {"description": "malformed command", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "403": {"description": "caller is not authorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "404": {"description": "account does not exist", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "409": {"description": "conflicts with the current state", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "422": {"description": "command was rejected", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/events": {
      "get": {
        "summary": "List journal records",
        "parameters": [
          {"in": "query", "name": "from", "type": "integer", "default": 1},
          {"in": "query", "name": "limit", "type": "integer"}
        ],
        "responses": {"200": {"description": "page of event records"}}
      }
    },
    "/mints/{mint}": {"get": {"summary": "Stablecoin state", "parameters": [{"$ref": "#/parameters/mint"}], "responses": {"200": {"description": "stablecoin"}, "404": {"description": "not initialized"}}}},
    "/mints/{mint}/hook": {"get": {"summary": "Transfer hook configuration", "parameters": [{"$ref": "#/parameters/mint"}], "responses": {"200": {"description": "hook config"}}}},
    "/mints/{mint}/roles/{owner}": {"get": {"summary": "Roles of the account", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "owner", "required": true, "type": "string"}], "responses": {"200": {"description": "role account"}}}},
    "/mints/{mint}/accounts/{owner}": {"get": {"summary": "Token account", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "owner", "required": true, "type": "string"}], "responses": {"200": {"description": "token account"}}}},
    "/mints/{mint}/minters/{minter}": {"get": {"summary": "Minter quota", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "minter", "required": true, "type": "string"}], "responses": {"200": {"description": "minter info"}}}},
    "/mints/{mint}/blacklist/{address}": {"get": {"summary": "Blacklist entry", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "address", "required": true, "type": "string"}], "responses": {"200": {"description": "blacklist entry"}}}},
    "/mints/{mint}/whitelist/{address}": {"get": {"summary": "Whitelist entry", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "address", "required": true, "type": "string"}], "responses": {"200": {"description": "whitelist entry"}}}},
    "/mints/{mint}/multisig": {"get": {"summary": "Multisig configuration", "parameters": [{"$ref": "#/parameters/mint"}], "responses": {"200": {"description": "multisig config"}}}},
    "/mints/{mint}/proposals": {"get": {"summary": "List proposals", "parameters": [{"$ref": "#/parameters/mint"}], "responses": {"200": {"description": "proposals"}}}},
    "/mints/{mint}/proposals/{id}": {"get": {"summary": "Proposal", "parameters": [{"$ref": "#/parameters/mint"}, {"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "proposal"}}}},
    "/mints/{mint}/transfer-preview": {
      "post": {
        "summary": "Compliance verdict of a transfer without executing it",
        "parameters": [{"$ref": "#/parameters/mint"}, {"in": "body", "name": "transfer", "required": true, "schema": {"$ref": "#/definitions/TransferPreviewRequest"}}],
        "responses": {"200": {"description": "verdict"}}
      }
    }
  },
  "parameters": {
    "mint": {"in": "path", "name": "mint", "required": true, "type": "string", "description": "base58 encoded mint identity"}
  },
  "definitions": {
    "CommandRequest": {
      "type": "object",
      "required": ["type", "mint", "caller"],
      "properties": {
        "type": {"type": "string", "example": "mint"},
        "mint": {"type": "string"},
        "caller": {"type": "string"},
        "attributes": {"type": "object"}
      }
    },
    "TransferPreviewRequest": {
      "type": "object",
      "properties": {
        "caller": {"type": "string"},
        "source": {"type": "string"},
        "destination": {"type": "string"},
        "amount": {"type": "integer"},
        "timestamp": {"type": "integer", "description": "unix seconds, current time when omitted"}
      }
    },
    "ErrorResponse": {
      "type": "object",
      "properties": {
        "kind": {"type": "string"},
        "message": {"type": "string"}
      }
    }
  }
}`
