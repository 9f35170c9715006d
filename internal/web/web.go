// Package web serves the server-rendered interface. It shares services and
// access rules with the JSON API; sessions ride on the same JWT as a cookie.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/internal/services"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"date": func(date datatypes.Date) string {
		return time.Time(date).Format(services.DateLayout)
	},
	"dateptr": func(date *datatypes.Date) string {
		if date == nil {
			return "-"
		}
		return services.FormatDate(date)
	},
}

func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

// LoadTemplates installs the embedded templates on the engine.
func LoadTemplates(r *gin.Engine) error {
	tmpl, err := ParseTemplates()
	if err != nil {
		return err
	}

	r.SetHTMLTemplate(tmpl)
	return nil
}
