package http

import (
	"fmt"
	"os"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

const DefaultSwaggerSpec = "docs/swagger.yaml"

// swaggerDoc is the swag registry entry read by echo-swagger for doc.json.
type swaggerDoc struct {
	mu   sync.RWMutex
	json string
}

func (d *swaggerDoc) ReadDoc() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.json
}

var (
	apiDoc         = &swaggerDoc{}
	registerAPIDoc sync.Once
)

// RegisterSwagger converts the YAML spec at specPath to JSON and serves the UI
// under /swagger. A missing or malformed spec is reported and nothing is mounted.
func RegisterSwagger(e *echo.Echo, specPath string) error {
	if specPath == "" {
		specPath = DefaultSwaggerSpec
	}
	data, err := os.ReadFile(specPath)
	if err != nil {
		return fmt.Errorf("load swagger spec: %w", err)
	}
	jsonSpec, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("convert swagger spec %s: %w", specPath, err)
	}

	apiDoc.mu.Lock()
	apiDoc.json = string(jsonSpec)
	apiDoc.mu.Unlock()
	registerAPIDoc.Do(func() { swag.Register(swag.Name, apiDoc) })

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return nil
}
