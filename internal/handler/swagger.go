package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kantong/kantong-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document produced from the swag output
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPIServers are advertised in the converted document
var OpenAPIServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
	{URL: "http://localhost:8080/api/v1/demo", Description: "Guest Demo (no sign-in)"},
}

// transformRefs rewrites #/definitions/ refs to #/components/schemas/ and
// converts Swagger 2.0 parameters along the way
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if _, hasIn := v["in"]; hasIn {
			if _, hasName := v["name"]; hasName {
				return transformParameter(v)
			}
		}

		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformParameter moves the type fields of a Swagger 2.0 parameter into a schema
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}
	if param["in"] == "body" {
		if schema, ok := param["schema"]; ok {
			result["schema"] = transformRefs(schema)
		}
		return result
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = transformRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// liftRequestBodies replaces "in: body" parameters of every operation with an
// OpenAPI 3 requestBody
func liftRequestBodies(paths map[string]interface{}) {
	for _, item := range paths {
		operations, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for _, op := range operations {
			operation, ok := op.(map[string]interface{})
			if !ok {
				continue
			}
			params, ok := operation["parameters"].([]interface{})
			if !ok {
				continue
			}

			kept := params[:0]
			for _, p := range params {
				param, ok := p.(map[string]interface{})
				if !ok || param["in"] != "body" {
					kept = append(kept, p)
					continue
				}
				body := map[string]interface{}{
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{"schema": param["schema"]},
					},
				}
				if required, ok := param["required"]; ok {
					body["required"] = required
				}
				if description, ok := param["description"]; ok {
					body["description"] = description
				}
				operation["requestBody"] = body
			}
			if len(kept) == 0 {
				delete(operation, "parameters")
			} else {
				operation["parameters"] = kept
			}
		}
	}
}

// ServeOpenAPI3Spec serves the swag document converted to OpenAPI 3.0
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read swagger doc")
		return NewInternalError(c, "Failed to read API documentation")
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		log.Error().Err(err).Msg("Failed to parse swagger doc")
		return NewInternalError(c, "Failed to parse API documentation")
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})
	transformedPaths, _ := transformRefs(paths).(map[string]interface{})
	if transformedPaths == nil {
		transformedPaths = map[string]interface{}{}
	}
	liftRequestBodies(transformedPaths)

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = transformRefs(definitions)
	}

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    OpenAPIServers,
		Paths:      transformedPaths,
		Components: components,
	})
}
