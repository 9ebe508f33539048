package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/salao-caixa/caixa-backend/docs"
	"github.com/swaggo/swag"
)

const problemSchemaRef = "#/components/schemas/handler.ProblemDetails"

// apiTags lists the operation groups of the caixa API in display order
var apiTags = []Tag{
	{Name: "movements", Description: "Cash entries and exits of the ledger"},
	{Name: "services", Description: "Catalog of salon services and their prices"},
	{Name: "reports", Description: "Summaries, dashboard metrics and report exports"},
}

// OpenAPI3Spec is the OpenAPI 3.0 rendition of the generated swagger doc
type OpenAPI3Spec struct {
	OpenAPI    string                                 `json:"openapi"`
	Info       json.RawMessage                        `json:"info"`
	Servers    []Server                               `json:"servers"`
	Tags       []Tag                                  `json:"tags"`
	Paths      map[string]map[string]OpenAPIOperation `json:"paths"`
	Components Components                             `json:"components"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Tag describes one group of operations
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Components holds the shared schemas and error responses
type Components struct {
	Schemas   map[string]json.RawMessage `json:"schemas"`
	Responses map[string]OpenAPIResponse `json:"responses"`
}

// OpenAPIOperation is a single method of a path
type OpenAPIOperation struct {
	Summary     string                     `json:"summary,omitempty"`
	Description string                     `json:"description,omitempty"`
	Tags        []string                   `json:"tags,omitempty"`
	Parameters  []OpenAPIParameter         `json:"parameters,omitempty"`
	RequestBody *OpenAPIRequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]OpenAPIResponse `json:"responses"`
}

// OpenAPIParameter is a path or query parameter
type OpenAPIParameter struct {
	Name        string                 `json:"name"`
	In          string                 `json:"in"`
	Description string                 `json:"description,omitempty"`
	Required    bool                   `json:"required,omitempty"`
	Schema      map[string]interface{} `json:"schema"`
}

// OpenAPIRequestBody replaces the swagger 2 body parameter
type OpenAPIRequestBody struct {
	Description string                  `json:"description,omitempty"`
	Required    bool                    `json:"required"`
	Content     map[string]OpenAPIMedia `json:"content"`
}

// OpenAPIResponse is either an inline response or a reference to a shared one
type OpenAPIResponse struct {
	Ref         string                  `json:"$ref,omitempty"`
	Description string                  `json:"description,omitempty"`
	Content     map[string]OpenAPIMedia `json:"content,omitempty"`
}

// OpenAPIMedia wraps the schema of one content type
type OpenAPIMedia struct {
	Schema json.RawMessage `json:"schema"`
}

type swaggerDoc struct {
	Info        json.RawMessage                        `json:"info"`
	Paths       map[string]map[string]swaggerOperation `json:"paths"`
	Definitions map[string]json.RawMessage             `json:"definitions"`
}

type swaggerOperation struct {
	Summary     string                     `json:"summary"`
	Description string                     `json:"description"`
	Tags        []string                   `json:"tags"`
	Consumes    []string                   `json:"consumes"`
	Produces    []string                   `json:"produces"`
	Parameters  []swaggerParameter         `json:"parameters"`
	Responses   map[string]swaggerResponse `json:"responses"`
}

type swaggerParameter struct {
	Name        string          `json:"name"`
	In          string          `json:"in"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Type        string          `json:"type"`
	Default     interface{}     `json:"default"`
	Schema      json.RawMessage `json:"schema"`
}

type swaggerResponse struct {
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
}

// ServeOpenAPI3Spec serves the API description as OpenAPI 3.0.
// The server URL follows the host the request came in on.
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return NewInternalError(c, "Failed to read swagger doc")
	}

	spec, err := convertSwaggerDoc(doc)
	if err != nil {
		return NewInternalError(c, "Failed to parse swagger doc")
	}
	spec.Servers = []Server{{
		URL:         c.Scheme() + "://" + c.Request().Host + docs.SwaggerInfo.BasePath,
		Description: "This server",
	}}

	return c.JSON(http.StatusOK, spec)
}

func convertSwaggerDoc(doc string) (*OpenAPI3Spec, error) {
	// schema references move under components in OpenAPI 3
	doc = strings.ReplaceAll(doc, "#/definitions/", "#/components/schemas/")

	var src swaggerDoc
	if err := json.Unmarshal([]byte(doc), &src); err != nil {
		return nil, err
	}

	spec := &OpenAPI3Spec{
		OpenAPI: "3.0.3",
		Info:    src.Info,
		Tags:    apiTags,
		Paths:   make(map[string]map[string]OpenAPIOperation, len(src.Paths)),
		Components: Components{
			Schemas:   src.Definitions,
			Responses: make(map[string]OpenAPIResponse),
		},
	}

	for path, methods := range src.Paths {
		converted := make(map[string]OpenAPIOperation, len(methods))
		for method, op := range methods {
			converted[method] = convertOperation(op, spec.Components.Responses)
		}
		spec.Paths[path] = converted
	}
	return spec, nil
}

func convertOperation(op swaggerOperation, shared map[string]OpenAPIResponse) OpenAPIOperation {
	out := OpenAPIOperation{
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Responses:   make(map[string]OpenAPIResponse, len(op.Responses)),
	}

	for _, p := range op.Parameters {
		if p.In == "body" {
			out.RequestBody = &OpenAPIRequestBody{
				Description: p.Description,
				Required:    p.Required,
				Content:     mediaFor(op.Consumes, p.Schema),
			}
			continue
		}
		schema := map[string]interface{}{"type": p.Type}
		if p.Default != nil {
			schema["default"] = p.Default
		}
		out.Parameters = append(out.Parameters, OpenAPIParameter{
			Name:        p.Name,
			In:          p.In,
			Description: p.Description,
			Required:    p.Required || p.In == "path",
			Schema:      schema,
		})
	}

	for status, resp := range op.Responses {
		if name, ok := problemResponseName(status, resp); ok {
			if _, exists := shared[name]; !exists {
				shared[name] = OpenAPIResponse{
					Description: resp.Description,
					Content:     mediaFor(nil, json.RawMessage(`{"$ref":"`+problemSchemaRef+`"}`)),
				}
			}
			out.Responses[status] = OpenAPIResponse{Ref: "#/components/responses/" + name}
			continue
		}
		converted := OpenAPIResponse{Description: resp.Description}
		if len(resp.Schema) > 0 {
			converted.Content = mediaFor(op.Produces, fileToBinary(resp.Schema))
		}
		out.Responses[status] = converted
	}

	return out
}

// problemResponseName names the shared response of an error status,
// e.g. 404 becomes NotFound
func problemResponseName(status string, resp swaggerResponse) (string, bool) {
	code, err := strconv.Atoi(status)
	if err != nil || code < http.StatusBadRequest {
		return "", false
	}
	if !strings.Contains(string(resp.Schema), problemSchemaRef) {
		return "", false
	}
	return strings.ReplaceAll(http.StatusText(code), " ", ""), true
}

func mediaFor(contentTypes []string, schema json.RawMessage) map[string]OpenAPIMedia {
	if len(contentTypes) == 0 {
		contentTypes = []string{echo.MIMEApplicationJSON}
	}
	media := make(map[string]OpenAPIMedia, len(contentTypes))
	for _, t := range contentTypes {
		media[t] = OpenAPIMedia{Schema: schema}
	}
	return media
}

// fileToBinary rewrites the swagger 2 file type used by the export download
func fileToBinary(schema json.RawMessage) json.RawMessage {
	var typed struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(schema, &typed); err == nil && typed.Type == "file" {
		return json.RawMessage(`{"type":"string","format":"binary"}`)
	}
	return schema
}
