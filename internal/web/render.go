package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/editathons/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageIndex     = "index.html"
	PageCampaign  = "campaign_overview.html"
	PageEditathon = "editathon_overview.html"
)

type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer(dateFormat string) (*Renderer, error) {
	funcs := template.FuncMap{
		"campaignPath":  CampaignPath,
		"editathonPath": EditathonPath,
		"year":          formatYear,
		"text":          deref,
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(dateFormat)
		},
	}

	pages := make(map[string]*template.Template)
	for _, page := range []string{PageIndex, PageCampaign, PageEditathon} {
		tpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/stats.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		pages[page] = tpl
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the page into a buffer so a failed render never leaves a
// half-written response.
func (r *Renderer) Render(page string, data interface{}) ([]byte, error) {
	tpl, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %s", page)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}

// CampaignPath builds the /campaign/<name>&<year> link of a campaign.
func CampaignPath(c models.Campaign) string {
	return "/campaign/" + url.PathEscape(c.Name) + "&" + formatYear(c.Year)
}

func EditathonPath(c models.Campaign, e models.Editathon) string {
	return CampaignPath(c) + "/" + url.PathEscape(e.Sitename)
}

func formatYear(year *int64) string {
	if year == nil {
		return ""
	}
	return strconv.FormatInt(*year, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
