package medicover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	homePath            = "/"
	loginPath           = "/Users/Account/LogOn"
	formModelPath       = "/api/MyVisits/SearchFreeSlotsToBook/FormModel"
	availableVisitsPath = "/api/MyVisits/SearchFreeSlotsToBook"
	bookVisitPath       = "/MyVisits/BookingAppointmentProcess/Confirm"

	// DefaultBaseURL is the production Medicover patient portal.
	DefaultBaseURL = "https://mol.medicover.pl"

	userAgent = "Mozilla/5.0"
)

// Client is an authenticated HTTP session against the Medicover patient
// portal. It owns the cookie jar established by Login and performs every
// remote call of the booking flow. It is not safe for concurrent use; the
// form-narrowing protocol is sequential by nature.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client. The provided client must
// carry a cookie jar, and must not follow redirects if Login is going to be
// used (the login handshake inspects the raw 302).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLimiter replaces the default request rate limiter.
func WithLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates a client for the portal at baseURL. Pass DefaultBaseURL
// outside of tests.
func NewClient(baseURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
			// The login endpoint signals success with a 302; keep
			// redirect responses observable instead of following them.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(5, 5),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do performs one portal request. A non-nil form is sent as a form-encoded
// POST body. The caller owns the response body.
func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter (%s %s): %w", method, rawURL, err)
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request (%s %s): %w", method, rawURL, err)
	}

	// The portal rejects requests that do not look like its own frontend.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug("portal request", zap.String("method", method), zap.String("url", rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request (%s %s): %w", method, rawURL, err)
	}
	return resp, nil
}

// doJSON performs a request, requires a 2xx status and decodes the JSON
// body into target.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, form url.Values, target any) error {
	resp, err := c.do(ctx, method, rawURL, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d for %s %s", resp.StatusCode, method, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response for %s %s: %w", method, rawURL, err)
	}
	return nil
}

// verificationToken fetches the home page and scrapes the anti-forgery
// token from the login form.
func (c *Client) verificationToken(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+homePath, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d fetching home page", resp.StatusCode)
	}

	token, err := scrapeVerificationToken(resp.Body)
	if err != nil {
		return "", fmt.Errorf("home page: %w", err)
	}
	return token, nil
}

// Login performs the authentication handshake: it scrapes the anti-forgery
// token from the home page and posts it together with the credentials. The
// backend answers a successful login with a redirect; any other status
// fails with ErrAuthentication. The session cookies issued alongside the
// redirect authenticate all subsequent calls.
func (c *Client) Login(ctx context.Context, user, password string) error {
	token, err := c.verificationToken(ctx)
	if err != nil {
		return err
	}

	payload := url.Values{
		"userNameOrEmail":            {user},
		"password":                   {password},
		"__RequestVerificationToken": {token},
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+loginPath, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		c.logger.Debug("login rejected", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("login returned status %d: %w", resp.StatusCode, ErrAuthentication)
	}

	c.logger.Info("logged in", zap.String("user", user))
	return nil
}

// FormData is the decoded form definition: the option lists of every field
// the server currently offers, keyed by canonical field name, plus the
// server-computed canSearch flag.
type FormData struct {
	Fields    map[FieldName][]Option
	CanSearch bool
}

// FormModel fetches the search form definition. The params narrow the
// returned option lists; pass nil for the initial, unconstrained form.
func (c *Client) FormModel(ctx context.Context, params url.Values) (FormData, error) {
	formURL := c.baseURL + formModelPath
	if len(params) > 0 {
		formURL += "?" + params.Encode()
	}

	var raw map[string]json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, formURL, nil, &raw); err != nil {
		return FormData{}, fmt.Errorf("failed to get form model: %w", err)
	}
	return parseFormData(raw)
}

// parseFormData extracts the available* option lists and the canSearch
// flag. Negative option ids are placeholder entries ("Choose a doctor") and
// are dropped here, before any caller sees them.
func parseFormData(raw map[string]json.RawMessage) (FormData, error) {
	data := FormData{Fields: make(map[FieldName][]Option)}

	for key, value := range raw {
		switch {
		case key == "canSearch":
			if err := json.Unmarshal(value, &data.CanSearch); err != nil {
				return FormData{}, fmt.Errorf("failed to decode canSearch: %w", err)
			}
		case strings.HasPrefix(key, "available"):
			var options []Option
			if err := json.Unmarshal(value, &options); err != nil {
				return FormData{}, fmt.Errorf("failed to decode options for %s: %w", key, err)
			}
			valid := make([]Option, 0, len(options))
			for _, option := range options {
				if option.ID >= 0 {
					valid = append(valid, option)
				}
			}
			name := FieldName(camelToUnderscore(strings.TrimPrefix(key, "available")))
			data.Fields[name] = valid
		}
	}

	return data, nil
}

// VisitData is one raw appointment slot as returned by the search endpoint.
type VisitData struct {
	ID                 int    `json:"id"`
	DoctorName         string `json:"doctorName"`
	SpecializationName string `json:"specializationName"`
	ClinicName         string `json:"clinicName"`
	AppointmentDate    string `json:"appointmentDate"`
}

// AvailableVisits posts the accumulated search parameters and returns the
// matching free slots.
func (c *Client) AvailableVisits(ctx context.Context, params url.Values) ([]VisitData, error) {
	var result struct {
		Items []VisitData `json:"items"`
	}
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+availableVisitsPath+"?language=pl-PL", params, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to get available visits: %w", err)
	}
	return result.Items, nil
}

// BookVisit books the slot with the given id. The confirmation page carries
// a hidden form (fresh anti-forgery token, slot identifiers) whose inputs
// must be replayed verbatim: the server binds the booking to that exact
// token/slot pairing. Success is the response status class only; the
// backend exposes no application-level confirmation.
func (c *Client) BookVisit(ctx context.Context, visitID int) (bool, error) {
	confirmURL := c.baseURL + bookVisitPath

	resp, err := c.do(ctx, http.MethodGet, confirmURL+"?id="+strconv.Itoa(visitID), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code %d fetching confirmation page for visit %d", resp.StatusCode, visitID)
	}

	fields, err := scrapeConfirmationForm(resp.Body)
	if err != nil {
		return false, fmt.Errorf("confirmation page for visit %d: %w", visitID, err)
	}

	c.logger.Debug("submitting booking", zap.Int("visitID", visitID), zap.Int("formFields", len(fields)))

	submit, err := c.do(ctx, http.MethodPost, confirmURL, fields)
	if err != nil {
		return false, err
	}
	defer submit.Body.Close()

	return submit.StatusCode < 400, nil
}
