package response

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type Meta struct {
	CurrentPage int  `json:"current_page"`
	From        *int `json:"from"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	To          *int `json:"to"`
	Total       int  `json:"total"`
}

type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Paginator describes one page of a length-aware collection.
type Paginator struct {
	Total   int
	Page    int
	PerPage int
	// URL is the page-less request URL; links set its page parameter.
	URL *url.URL
}

func NewPaginator(total, page, perPage int, u *url.URL) *Paginator {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}
	if u == nil {
		u = &url.URL{}
	}
	return &Paginator{Total: total, Page: page, PerPage: perPage, URL: u}
}

func (p *Paginator) LastPage() int {
	last := (p.Total + p.PerPage - 1) / p.PerPage
	if last < 1 {
		return 1
	}
	return last
}

// count is the number of items on the current page.
func (p *Paginator) count() int {
	n := p.Total - (p.Page-1)*p.PerPage
	if n < 0 {
		return 0
	}
	if n > p.PerPage {
		return p.PerPage
	}
	return n
}

func (p *Paginator) Meta() Meta {
	m := Meta{
		CurrentPage: p.Page,
		LastPage:    p.LastPage(),
		PerPage:     p.PerPage,
		Total:       p.Total,
	}
	if n := p.count(); n > 0 {
		from := (p.Page-1)*p.PerPage + 1
		to := from + n - 1
		m.From = &from
		m.To = &to
	}
	return m
}

func (p *Paginator) Links() Links {
	last := p.LastPage()
	l := Links{
		First: p.pageURL(1),
		Last:  p.pageURL(last),
	}
	if p.Page > 1 {
		prev := p.pageURL(p.Page - 1)
		l.Prev = &prev
	}
	if p.Page < last {
		next := p.pageURL(p.Page + 1)
		l.Next = &next
	}
	return l
}

func (p *Paginator) pageURL(page int) string {
	u := *p.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// RequestURL returns the absolute URL of the current request. publicBase,
// when set, replaces the scheme and host the request arrived with.
func RequestURL(c echo.Context, publicBase string) *url.URL {
	req := c.Request()
	u := &url.URL{
		Scheme:   c.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
	}
	if publicBase == "" {
		return u
	}
	base, err := url.Parse(publicBase)
	if err != nil || base.Host == "" {
		return u
	}
	u.Scheme = base.Scheme
	u.Host = base.Host
	u.Path = strings.TrimRight(base.Path, "/") + req.URL.Path
	return u
}
