// Package views renders the storefront pages. Pages are html/template files
// embedded into the binary and exposed as templ components so controllers
// can serve them through templ.Handler like any other component.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/pricing"
	"github.com/ManuelReschke/BaanBox/internal/pkg/usercontext"
	"github.com/ManuelReschke/BaanBox/internal/pkg/utils"
)

//go:embed templates
var templateFS embed.FS

// ErrorFS holds the templates of the fiber html engine used by the error handler.
//
//go:embed errors/*.html
var ErrorFS embed.FS

// Layout is what every page gets; the page's own values go into Data.
type Layout struct {
	Title       string
	User        usercontext.UserContext
	Flash       fiber.Map
	CSRF        string
	CartCount   int
	UnreadCount int64
	FooterPages []models.Page
	Path        string
	IsDev       bool
	Data        interface{}
}

// HasFlash is used by the layout to decide whether to show the banner.
func (l Layout) HasFlash() bool {
	if l.Flash == nil {
		return false
	}
	msg, _ := l.Flash["message"].(string)
	return msg != ""
}

func (l Layout) FlashType() string {
	if t, ok := l.Flash["type"].(string); ok && t != "" {
		return t
	}
	return "info"
}

func (l Layout) FlashMessage() string {
	msg, _ := l.Flash["message"].(string)
	return msg
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + pricing.Format(d) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Mon, 02 Jan 2006")
	},
	"datetime": func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
	"title": func(s string) string {
		s = strings.ReplaceAll(s, "_", " ")
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"paymentLabel": models.PaymentMethodLabel,
	"inc":          func(i int) int { return i + 1 },
	"percent":      func(d decimal.Decimal) string { return d.StringFixed(0) + "%" },
	"avatar":       utils.AvatarURL,
	// page bodies are admin written HTML
	"pageHTML":     func(s string) template.HTML { return template.HTML(utils.PageContent(s)) },
}

var (
	once    sync.Once
	pages   map[string]*template.Template
	loadErr error
)

func load() {
	pages = make(map[string]*template.Template)

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		loadErr = err
		return
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		loadErr = err
		return
	}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.Must(base.Clone()).ParseFS(templateFS, file)
		if err != nil {
			loadErr = fmt.Errorf("parse %s: %w", file, err)
			return
		}
		pages[name] = tmpl
	}
}

// Names lists the parsed pages.
func Names() ([]string, error) {
	once.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]string, 0, len(pages))
	for name := range pages {
		out = append(out, name)
	}
	return out, nil
}

// Page returns the component for the page template name wrapped in the layout.
func Page(name string, l Layout) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		once.Do(load)
		if loadErr != nil {
			return loadErr
		}
		tmpl, ok := pages[name]
		if !ok {
			return fmt.Errorf("view %q not found", name)
		}
		// pointer methods like Subscription.ShortID need addressable data
		if l.Data != nil {
			if v := reflect.ValueOf(l.Data); v.Kind() != reflect.Pointer {
				p := reflect.New(v.Type())
				p.Elem().Set(v)
				l.Data = p.Interface()
			}
		}
		return tmpl.ExecuteTemplate(w, "layout", l)
	})
}
