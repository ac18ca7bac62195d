package httpserver

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/tablescope/internal/logger"
	"github.com/KaramelBytes/tablescope/internal/screen"
	"github.com/KaramelBytes/tablescope/internal/tabular"
)

type navItem struct {
	Path  string
	Label string
}

var nav = []navItem{
	{"/greeting", "인사"},
	{"/mbti/careers", "MBTI 진로"},
	{"/mbti/media", "MBTI 책·영화"},
	{"/spots", "관광지"},
	{"/mbti/countries", "국가별 MBTI"},
	{"/mbti/rank", "MBTI 국가 순위"},
	{"/subway", "지하철"},
	{"/alcohol", "알코올 사망"},
}

// page is the template data for every screen.
type page struct {
	Path string
	// Form selects the form block rendered above the view.
	Form       string
	Nav        []navItem
	View       *screen.View
	ExportCSV  string
	ExportXLSX string
}

var templateFuncs = template.FuncMap{
	"levelClass": func(l screen.Level) string {
		if l == screen.LevelError {
			return "danger"
		}
		return string(l)
	},
	"opts": func(name, label string, v *screen.View) selectField {
		return selectField{Name: name, Label: label, Options: v.Choices[name], Selected: v.Selected[name]}
	},
}

type selectField struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

func (s *Server) render(c *gin.Context, form string, v *screen.View) {
	p := page{Path: c.Request.URL.Path, Form: form, Nav: nav, View: v}
	if form == "subway" && v.Export.Len() > 0 {
		q := url.Values{}
		for _, k := range []string{"date", "line", "top_n"} {
			q.Set(k, v.Selected[k])
		}
		if v.Source != "" {
			q.Set("source", v.Source)
		}
		q.Set("format", "csv")
		p.ExportCSV = "/subway/export?" + q.Encode()
		q.Set("format", "xlsx")
		p.ExportXLSX = "/subway/export?" + q.Encode()
	}
	c.HTML(http.StatusOK, "page.html", p)
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{Path: "/", Nav: nav})
}

func (s *Server) greeting(c *gin.Context) {
	_, submitted := c.GetQuery("submit")
	v := s.env.Greeting(c.Request.Context(), screen.GreetingInput{
		Name:      c.Query("name"),
		Food:      c.Query("food"),
		Submitted: submitted,
	})
	s.render(c, "greeting", v)
}

func (s *Server) careers(c *gin.Context) {
	s.render(c, "careers", s.env.Careers(c.Request.Context(), c.Query("type")))
}

func (s *Server) media(c *gin.Context) {
	_, submitted := c.GetQuery("submit")
	v := s.env.Media(c.Request.Context(), screen.MediaInput{Type: c.Query("type"), Submitted: submitted})
	s.render(c, "media", v)
}

func (s *Server) spots(c *gin.Context) {
	s.render(c, "spots", s.env.Spots(c.Request.Context()))
}

func (s *Server) countries(c *gin.Context) {
	v := s.env.CountryMBTI(c.Request.Context(), screen.CountryInput{
		Source:  screen.SourceRef{ID: c.Query("source")},
		Country: c.Query("country"),
	})
	s.render(c, "countries", v)
}

func (s *Server) rank(c *gin.Context) {
	pin, pinSet := c.GetQuery("pin")
	v := s.env.MBTIRank(c.Request.Context(), screen.RankInput{
		Source: screen.SourceRef{ID: c.Query("source")},
		Type:   c.Query("type"),
		TopN:   atoi(c.Query("top_n")),
		Pin:    pin,
		PinSet: pinSet,
	})
	s.render(c, "rank", v)
}

func (s *Server) subwayView(c *gin.Context, ref screen.SourceRef) *screen.View {
	return s.env.Subway(c.Request.Context(), screen.SubwayInput{
		Source: ref,
		Date:   c.Request.FormValue("date"),
		Line:   c.Request.FormValue("line"),
		TopN:   atoi(c.Request.FormValue("top_n")),
	})
}

func (s *Server) subway(c *gin.Context) {
	s.render(c, "subway", s.subwayView(c, screen.SourceRef{ID: c.Query("source")}))
}

func (s *Server) alcoholView(c *gin.Context, ref screen.SourceRef) *screen.View {
	return s.env.Alcohol(c.Request.Context(), screen.AlcoholInput{Source: ref})
}

func (s *Server) alcohol(c *gin.Context) {
	s.render(c, "alcohol", s.alcoholView(c, screen.SourceRef{ID: c.Query("source")}))
}

// upload ingests the multipart "file" field and redirects to the GET view of
// path with the new source id. A submit without a file keeps the current
// source. A file that fails to load is rendered in place with its message.
func (s *Server) upload(path, form string) gin.HandlerFunc {
	view := s.subwayView
	if form == "alcohol" {
		view = s.alcoholView
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		q := url.Values{}
		for _, k := range []string{"date", "line", "top_n"} {
			if v := strings.TrimSpace(c.PostForm(k)); v != "" {
				q.Set(k, v)
			}
		}
		source := c.PostForm("source")

		fh, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			if source != "" {
				q.Set("source", source)
			}
			c.Redirect(http.StatusSeeOther, withQuery(path, q))
			return
		case err != nil:
			v := view(c, screen.SourceRef{ID: source})
			v.Messages = append([]screen.Message{{Level: screen.LevelError, Text: "파일 업로드에 실패했습니다: " + err.Error()}}, v.Messages...)
			s.render(c, form, v)
			return
		}
		src, err := readUpload(fh)
		if err != nil {
			v := view(c, screen.SourceRef{ID: source})
			v.Messages = append([]screen.Message{screen.MessageFor(err)}, v.Messages...)
			s.render(c, form, v)
			return
		}
		id, _, err := s.env.Ingest(src)
		if err != nil {
			logger.Warnf("ingest %s: %v", src.Name, err)
			s.render(c, form, view(c, screen.SourceRef{Upload: &src}))
			return
		}
		q.Set("source", id)
		c.Redirect(http.StatusSeeOther, withQuery(path, q))
	}
}

func readUpload(fh *multipart.FileHeader) (tabular.Source, error) {
	name := fh.Filename
	f, err := fh.Open()
	if err != nil {
		return tabular.Source{}, fmt.Errorf("open upload %s: %w", name, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return tabular.Source{}, fmt.Errorf("read upload %s: %w", name, err)
	}
	if b == nil {
		b = []byte{}
	}
	return tabular.Source{Name: name, Data: b}, nil
}

// subwayExport downloads the aggregated station table of the current selection.
func (s *Server) subwayExport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q: want csv or xlsx", format)})
		return
	}
	v := s.subwayView(c, screen.SourceRef{ID: c.Query("source")})
	if v.Halted() || v.Export.Len() == 0 {
		s.render(c, "subway", v)
		return
	}
	name := fmt.Sprintf("subway_%s_%s.%s", v.Selected["date"], v.Selected["line"], format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"subway.%s\"; filename*=UTF-8''%s", format, url.PathEscape(name)))
	var err error
	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = tabular.WriteXLSX(c.Writer, v.Export, "subway")
	} else {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = tabular.WriteCSV(c.Writer, v.Export)
	}
	if err != nil {
		logger.Errorf("export subway %s: %v", format, err)
	}
}

func (s *Server) invalidate(c *gin.Context) {
	id := c.Param("id")
	if !s.env.Invalidate(id) {
		c.JSON(http.StatusNotFound, gin.H{"id": id, "invalidated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "invalidated": true})
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
