package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

// Senate Electronic Financial Disclosure search endpoints.
const (
	DefaultBaseURL = "https://efdsearch.senate.gov"
	LandingPath    = "/search/home/"
	SearchPath     = "/search/"
	ReportsPath    = "/search/report/data/"
	PaperPrefix    = "/search/view/paper/"

	// MaxPageLength is the largest page the index endpoint accepts.
	MaxPageLength = 100

	csrfField       = "csrfmiddlewaretoken"
	periodicReports = "[11]"
	portalDate      = "01/02/2006"
)

// Anti-forgery cookie names, in lookup order.
var csrfCookies = []string{"csrftoken", "csrf"}

// Options configures an EFDClient.
type Options struct {
	BaseURL    string
	ProxyURL   string
	UserAgent  string
	Timeout    time.Duration
	PageLength int
	MaxPages   int // 0 means no cap
	MaxRetries int
	// Backoff returns the delay before retry attempt n (0-based).
	// Defaults to 1s << n.
	Backoff func(attempt int) time.Duration
	Now     func() time.Time
}

// EFDClient talks to the disclosure search portal. It holds one cookie
// session and is not safe for concurrent use.
type EFDClient struct {
	baseURL    *url.URL
	userAgent  string
	pageLength int
	maxPages   int
	maxRetries int
	backoff    func(int) time.Duration
	now        func() time.Time

	Client *http.Client
	Log    zerolog.Logger

	token string
}

// NewEFDClient creates a client with a fresh cookie jar and optional proxy support.
func NewEFDClient(opts Options, log zerolog.Logger) (*EFDClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.PageLength <= 0 || opts.PageLength > MaxPageLength {
		opts.PageLength = MaxPageLength
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff == nil {
		opts.Backoff = func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &EFDClient{
		baseURL:    base,
		userAgent:  opts.UserAgent,
		pageLength: opts.PageLength,
		maxPages:   opts.MaxPages,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		now:        opts.Now,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		Log: log.With().Str("component", "efd").Logger(),
	}, nil
}

func (c *EFDClient) Name() string { return "efdsearch" }

// Token returns the anti-forgery token of the current session.
func (c *EFDClient) Token() string { return c.token }

func (c *EFDClient) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.baseURL.String() + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// EstablishSession loads the landing page, accepts the usage agreement and
// returns the anti-forgery token issued for the session.
func (c *EFDClient) EstablishSession(ctx context.Context) (string, error) {
	landing := c.resolve(LandingPath)

	pg, err := c.do(ctx, http.MethodGet, landing, nil, nil)
	if err != nil {
		return "", &AuthError{Reason: "load landing page", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(pg.body)))
	if err != nil {
		return "", &AuthError{Reason: "parse landing page", Err: err}
	}
	formToken, ok := doc.Find(`[name="` + csrfField + `"]`).First().Attr("value")
	if !ok || formToken == "" {
		return "", &AuthError{Reason: "anti-forgery form field missing"}
	}

	form := url.Values{}
	form.Set(csrfField, formToken)
	form.Set("prohibition_agreement", "1")
	if _, err := c.do(ctx, http.MethodPost, landing, form, map[string]string{"Referer": landing}); err != nil {
		return "", &AuthError{Reason: "submit agreement", Err: err}
	}

	token := c.sessionToken()
	if token == "" {
		return "", &AuthError{Reason: "anti-forgery cookie missing"}
	}
	c.token = token
	c.Log.Debug().Msg("session established")
	return token, nil
}

func (c *EFDClient) sessionToken() string {
	cookies := c.Client.Jar.Cookies(c.baseURL)
	for _, name := range csrfCookies {
		for _, ck := range cookies {
			if ck.Name == name && ck.Value != "" {
				return ck.Value
			}
		}
	}
	return ""
}

// isLanding reports whether a final URL is the landing page. The query is
// ignored: expired sessions land on /search/home/?next=... .
func (c *EFDClient) isLanding(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.TrimRight(u.Path, "/") == strings.TrimRight(LandingPath, "/")
}

type page struct {
	url  string // final URL after redirects
	body []byte
}

// do performs one request. Non-200 responses and transport failures come
// back as *FetchError.
func (c *EFDClient) do(ctx context.Context, method, target string, form url.Values, headers map[string]string) (*page, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}
	return &page{url: resp.Request.URL.String(), body: data}, nil
}

// doWithRetry retries fetch failures with exponential backoff.
func (c *EFDClient) doWithRetry(ctx context.Context, method, target string, form url.Values, headers map[string]string) (*page, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		pg, err := c.do(ctx, method, target, form, headers)
		if err == nil {
			return pg, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var fe *FetchError
		if !errors.As(err, &fe) || i == c.maxRetries {
			break
		}
		wait := c.backoff(i)
		c.Log.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("fetch failed")
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
