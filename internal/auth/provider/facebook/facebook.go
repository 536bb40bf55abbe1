package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ditroboticstw/internal/auth"
	"ditroboticstw/internal/auth/provider"
	"ditroboticstw/internal/logger"

	"golang.org/x/oauth2"
	fb "golang.org/x/oauth2/facebook"
)

const (
	providerName = "facebook"

	defaultGraphURL = "https://graph.facebook.com"
)

// Provider implements the Facebook Login OAuth2 flow and the Graph /me
// profile lookup.
type Provider struct {
	oauthConfig *oauth2.Config
	graphURL    string
}

type Option func(*Provider)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(p *Provider) {
		p.oauthConfig.Endpoint = ep
	}
}

// WithGraphURL overrides the Graph API base URL.
func WithGraphURL(u string) Option {
	return func(p *Provider) {
		p.graphURL = strings.TrimRight(u, "/")
	}
}

func New(
	appID string,
	appSecret string,
	redirectURL string,
	opts ...Option,
) (*Provider, error) {

	if appID == "" || appSecret == "" || redirectURL == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	ep := fb.Endpoint
	ep.AuthStyle = oauth2.AuthStyleInParams

	p := &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  redirectURL,
			Endpoint:     ep,
			Scopes:       []string{"public_profile"},
		},
		graphURL: defaultGraphURL,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the Facebook login dialog URL.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

func (p *Provider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			if perr := parseError(rerr.Body); perr != nil {
				return nil, perr
			}
			if rerr.ErrorCode != "" {
				msg := rerr.ErrorDescription
				if msg == "" {
					msg = rerr.ErrorCode
				}
				return nil, &provider.Error{Provider: providerName, Type: rerr.ErrorCode, Message: msg}
			}
		}
		return nil, fmt.Errorf("facebook token exchange failed: %w", err)
	}

	return token, nil
}

func (p *Provider) Me(ctx context.Context, token *oauth2.Token) (*auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphURL+"/me?fields=id,name", nil)
	if err != nil {
		return nil, fmt.Errorf("facebook: create profile request: %w", err)
	}

	resp, err := p.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook: fetch profile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("facebook: read profile: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if perr := parseError(body); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("facebook: profile fetch failed (%d)", resp.StatusCode)
	}

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("facebook: decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, errors.New("facebook: profile missing id")
	}

	logger.Info("facebook profile fetched", map[string]any{
		"external_id":  profile.ID,
		"name_present": profile.Name != "",
	})

	return &auth.Identity{
		ExternalID:  profile.ID,
		DisplayName: profile.Name,
	}, nil
}

// parseError decodes the Graph API error envelope
// {"error":{"message":…,"type":…,"code":…}}.
func parseError(body []byte) *provider.Error {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	if envelope.Error.Message == "" {
		return nil
	}
	return &provider.Error{
		Provider: providerName,
		Type:     envelope.Error.Type,
		Code:     envelope.Error.Code,
		Message:  envelope.Error.Message,
	}
}
