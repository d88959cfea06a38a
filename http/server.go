package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/pagecut"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds inbound request IDs before they reach logs.
const maxRequestIDLength = 64

// Server defaults.
const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = rate.Limit(1)
	DefaultRateBurst       = 3
)

// Server hosts the web UI. Readings run one at a time: a request that
// arrives while another is in progress, or faster than the rate limit
// allows, is rejected with 429 rather than queued.
type Server struct {
	service pagecut.ReadingService
	logger  *slog.Logger
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	engine  *gin.Engine
	metrics http.Handler

	shutdownTimeout time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit sets the token bucket applied to reading requests.
func WithRateLimit(limit rate.Limit, burst int) ServerOption {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMetrics exposes h at GET /metrics.
func WithMetrics(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithShutdownTimeout bounds how long ListenAndServe waits for in-flight
// requests once its context ends.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer creates a Server backed by service.
func NewServer(service pagecut.ReadingService, opts ...ServerOption) *Server {
	s := &Server{
		service:         service,
		logger:          slog.New(slog.DiscardHandler),
		sem:             semaphore.NewWeighted(1),
		limiter:         rate.NewLimiter(DefaultRateLimit, DefaultRateBurst),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID, s.logRequest)
	engine.SetHTMLTemplate(pageTemplate)
	engine.GET("/", s.handleIndex)
	engine.POST("/read", s.handleRead)
	engine.POST("/api/read", s.handleAPIRead)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics))
	}
	s.engine = engine
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// requestID propagates an inbound request ID or assigns a new one.
func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > maxRequestIDLength {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func (s *Server) logRequest(c *gin.Context) {
	begin := time.Now()
	c.Next()
	s.logger.Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(begin),
		"request_id", c.GetString("request_id"),
	)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "page", pageData{})
}

func (s *Server) handleRead(c *gin.Context) {
	rawURL := strings.TrimSpace(c.PostForm("url"))
	out := s.read(c, rawURL)

	data := pageData{URL: rawURL, Steps: out.steps}
	if out.err != nil {
		data.Error = pagecut.ErrorMessage(out.err)
		c.HTML(out.status, "page", data)
		return
	}

	r := out.reading
	data.Title = r.Title
	data.Found = r.Found
	data.Display = r.HTML
	for _, d := range r.Downloads {
		link := downloadLink{Format: strings.ToUpper(d.Format), Filename: d.Filename}
		if d.Err != nil {
			link.Error = pagecut.ErrorMessage(d.Err)
		} else {
			link.Href = dataURI(d.ContentType, d.Data)
		}
		data.Downloads = append(data.Downloads, link)
	}
	c.HTML(http.StatusOK, "page", data)
}

// apiRequest is the JSON body of POST /api/read.
type apiRequest struct {
	URL string `json:"url" binding:"required"`
}

// apiDownload is one download in the JSON response. Data is base64.
type apiDownload struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleAPIRead(c *gin.Context) {
	var req apiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	out := s.read(c, strings.TrimSpace(req.URL))
	if out.err != nil {
		c.JSON(out.status, gin.H{"error": pagecut.ErrorMessage(out.err), "steps": out.steps})
		return
	}

	r := out.reading
	downloads := make([]apiDownload, 0, len(r.Downloads))
	for _, d := range r.Downloads {
		ad := apiDownload{Format: d.Format, Filename: d.Filename, ContentType: d.ContentType}
		if d.Err != nil {
			ad.Error = pagecut.ErrorMessage(d.Err)
		} else {
			ad.Data = d.Data
		}
		downloads = append(downloads, ad)
	}
	c.JSON(http.StatusOK, gin.H{
		"url":       r.URL,
		"title":     r.Title,
		"found":     r.Found,
		"html":      r.HTML,
		"markdown":  r.Markdown,
		"downloads": downloads,
		"steps":     out.steps,
	})
}

// step is one status report shown to the user.
type step struct {
	Status pagecut.Status `json:"status"`
	Detail string         `json:"detail,omitempty"`
}

// readOutcome is the result of one guarded reading.
type readOutcome struct {
	reading *pagecut.Reading
	steps   []step
	status  int
	err     error
}

// read runs one reading under the rate limit and the single-reading
// semaphore.
func (s *Server) read(c *gin.Context, rawURL string) readOutcome {
	if !s.limiter.Allow() {
		return readOutcome{status: http.StatusTooManyRequests, err: pagecut.Errorf(pagecut.EUNAVAILABLE, "too many requests, try again shortly")}
	}
	if !s.sem.TryAcquire(1) {
		return readOutcome{status: http.StatusTooManyRequests, err: pagecut.Errorf(pagecut.EUNAVAILABLE, "another page is being processed, try again shortly")}
	}
	defer s.sem.Release(1)

	var out readOutcome
	reading, err := s.service.Read(c.Request.Context(), rawURL, func(status pagecut.Status, detail string) {
		out.steps = append(out.steps, step{Status: status, Detail: detail})
	})
	if err != nil {
		s.logger.Error("read failed", "url", rawURL, "request_id", c.GetString("request_id"), "err", err)
		out.status = errorStatus(err)
		out.err = err
		return out
	}
	out.reading = reading
	out.status = http.StatusOK
	return out
}

// errorStatus maps an application error code to an HTTP status.
func errorStatus(err error) int {
	switch pagecut.ErrorCode(err) {
	case pagecut.EINVALID:
		return http.StatusBadRequest
	case pagecut.ENOTFOUND:
		return http.StatusNotFound
	case pagecut.EUNAVAILABLE:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// dataURI embeds a download in the page so the server keeps no state.
func dataURI(contentType string, data []byte) template.URL {
	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

type downloadLink struct {
	Format   string
	Filename string
	Href     template.URL
	Error    string
}

type pageData struct {
	URL       string
	Steps     []step
	Error     string
	Title     string
	Found     bool
	Display   string
	Downloads []downloadLink
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} - {{end}}pagecut</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 0 auto; padding: 1em; }
form { display: flex; gap: .5em; }
input[type=url] { flex: 1; padding: .4em; }
.steps { color: #555; font-size: .9em; }
.error { color: #b00020; }
.downloads a, .downloads span { margin-right: 1em; }
iframe { width: 100%; height: 70vh; border: 1px solid #ccc; }
</style>
</head>
<body>
<form method="post" action="/read">
<input type="url" name="url" value="{{.URL}}" placeholder="https://" required>
<button type="submit">Read</button>
</form>
{{with .Steps}}<ol class="steps">{{range .}}<li>{{.Status}}{{if .Detail}}: {{.Detail}}{{end}}</li>{{end}}</ol>{{end}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{if .Title}}
<h1>{{.Title}}</h1>
{{if not .Found}}<p class="error">No article content was found on this page.</p>{{end}}
<div class="downloads">
{{range .Downloads}}{{if .Error}}<span class="error">{{.Format}}: {{.Error}}</span>{{else}}<a href="{{.Href}}" download="{{.Filename}}">{{.Format}}</a>{{end}}
{{end}}
</div>
<hr>
<iframe sandbox="" srcdoc="{{.Display}}" title="{{.Title}}"></iframe>
{{end}}
</body>
</html>
`))
