package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	_ "sourcing/docs"
)

var ginPathParamRe = regexp.MustCompile(`:([^/]+)`)

func ginPathToSwaggerPath(path string) string {
	return ginPathParamRe.ReplaceAllString(path, "{$1}")
}

// routePaths builds a minimal swagger path entry for every registered route.
func routePaths(engine *gin.Engine) map[string]interface{} {
	paths := make(map[string]interface{})
	for _, route := range engine.Routes() {
		if strings.HasPrefix(route.Path, "/swagger") {
			continue
		}
		path := ginPathToSwaggerPath(route.Path)
		if paths[path] == nil {
			paths[path] = make(map[string]interface{})
		}
		method := strings.ToLower(route.Method)

		op := map[string]interface{}{
			"summary":  route.Method + " " + route.Path,
			"tags":     []string{strings.Split(strings.TrimPrefix(route.Path, "/api/"), "/")[0]},
			"produces": []string{"application/json"},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{"description": "OK"},
				"400": map[string]interface{}{"description": "Bad Request", "schema": map[string]interface{}{"$ref": "#/definitions/models.ErrorResponse"}},
				"500": map[string]interface{}{"description": "Internal Server Error", "schema": map[string]interface{}{"$ref": "#/definitions/models.ErrorResponse"}},
			},
			"security": []map[string][]string{{"BearerAuth": {}}},
		}
		if method == "post" || method == "put" || method == "patch" {
			op["consumes"] = []string{"application/json"}
		}
		(paths[path].(map[string]interface{}))[method] = op
	}
	return paths
}

var errorResponseDefinition = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"error":   map[string]interface{}{"type": "string"},
		"details": map[string]interface{}{"type": "string"},
	},
}

// swaggerDocHandler serves the registered swag doc. When it carries no
// paths they are filled in from the engine's routes.
func swaggerDocHandler(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "swagger doc not found"})
			return
		}

		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "swagger doc is invalid", "details": err.Error()})
			return
		}
		if paths, _ := doc["paths"].(map[string]interface{}); len(paths) == 0 {
			doc["paths"] = routePaths(engine)
			if _, ok := doc["definitions"]; !ok {
				doc["definitions"] = map[string]interface{}{"models.ErrorResponse": errorResponseDefinition}
			}
		}
		if host, _ := doc["host"].(string); host == "" {
			doc["host"] = c.Request.Host
		}
		c.JSON(http.StatusOK, doc)
	}
}

func mountSwagger(r *gin.Engine) {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"))
	docHandler := swaggerDocHandler(r)
	r.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			docHandler(c)
			return
		}
		ui(c)
	})
}
