package api

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "flash"

type flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type pageData struct {
	Title   string
	Flashes []flash
	Data    any
}

var funcs = template.FuncMap{
	"str": dto.Deref,
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"na": func(v fmt.Stringer) string {
		if s := v.String(); s != "" {
			return s
		}
		return "н/д"
	},
}

var pages = func() map[string]*template.Template {
	out := make(map[string]*template.Template)
	for _, name := range []string{"index", "employees", "add", "upload", "analytics"} {
		out[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}()

func render(ctx *fasthttp.RequestCtx, status int, page, title string, data any) {
	t, ok := pages[page]
	if !ok {
		serverError(ctx, fmt.Errorf("unknown page %q", page))
		return
	}

	var buf bytes.Buffer
	err := t.Execute(&buf, pageData{Title: title, Flashes: takeFlashes(ctx), Data: data})
	if err != nil {
		log.Error().Err(err).Str("page", page).Msg("template.Execute")
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(buf.Bytes())
}

// redirectWithFlash отвечает 303 на location с одноразовым уведомлением.
func redirectWithFlash(ctx *fasthttp.RequestCtx, location, category, message string) {
	raw, _ := json.Marshal([]flash{{Category: category, Message: message}})

	var c fasthttp.Cookie
	c.SetKey(flashCookie)
	c.SetValue(base64.RawURLEncoding.EncodeToString(raw))
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	ctx.Response.Header.SetCookie(&c)

	ctx.Redirect(location, fasthttp.StatusSeeOther)
}

func takeFlashes(ctx *fasthttp.RequestCtx) []flash {
	v := ctx.Request.Header.Cookie(flashCookie)
	if len(v) == 0 {
		return nil
	}
	ctx.Response.Header.DelClientCookie(flashCookie)

	raw, err := base64.RawURLEncoding.DecodeString(string(v))
	if err != nil {
		return nil
	}
	var out []flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
