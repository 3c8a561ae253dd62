package jobly

import (
	"io"
	"reflect"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/typescript-go/typescript"
)

type typeScriptConfig struct {
	namespace  string
	fileWriter io.Writer
}

func (config typeScriptConfig) Enabled() bool {
	return config.fileWriter != nil
}

func (app *App) generateTypeScript() error {
	if !app.typeScript.Enabled() {
		return nil
	}

	routes := map[string]typescript.Route{}
	for _, route := range app.routes() {
		routes[route.Name] = typescript.Route{
			Path:         route.Path,
			Method:       route.Method,
			RequestBody:  route.RequestBody,
			ResponseBody: route.ResponseBody,
		}
	}

	return typescript.New(
		typescript.WithCustomNamespace(app.typeScript.namespace),
		typescript.WithTypes(map[string]reflect.Type{
			"Company":         reflect.TypeFor[joblymodels.Company](),
			"CompanyWithJobs": reflect.TypeFor[joblymodels.CompanyWithJobs](),
			"ErrorResponse":   reflect.TypeFor[ErrorResponse](),
			"Job":             reflect.TypeFor[joblymodels.Job](),
			"NewCompany":      reflect.TypeFor[joblymodels.NewCompany](),
			"NewJob":          reflect.TypeFor[joblymodels.NewJob](),
			"NewUser":         reflect.TypeFor[joblymodels.NewUser](),
			"User":            reflect.TypeFor[joblymodels.User](),
		}),
		typescript.WithRoutes(routes),
	).Generate(app.typeScript.fileWriter)
}
