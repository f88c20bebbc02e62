// Package amadeus is the lodging directory adapter: OAuth2 client-credentials
// token management plus the hotel-list-by-city endpoint.
package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/transport"
	"trip_planner/internal/domain"
)

const tokenKey = "amadeus:access_token"

// tokenSlack is subtracted from expires_in so a token is never used right at
// its expiry.
const tokenSlack = 30 * time.Second

type Client struct {
	base   string
	id     string
	secret string
	tokens domain.Cache
	tr     *transport.Client
}

func New(base, id, secret string, tokens domain.Cache, rps int, timeout time.Duration) (*Client, error) {
	if id == "" || secret == "" {
		return nil, fmt.Errorf("amadeus client id and secret are required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("amadeus token cache is required")
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		id:     id,
		secret: secret,
		tokens: tokens,
		tr:     transport.New("amadeus", rps, timeout),
	}, nil
}

type cachedToken struct {
	AccessToken string `json:"access_token"`
}

// Token returns a cached bearer token, requesting a new one once the cached
// one has expired. Two callers racing past an expired token may both refresh.
func (c *Client) Token(ctx context.Context) (string, error) {
	var tok cachedToken
	if ok, err := c.tokens.Get(ctx, tokenKey, &tok); err != nil {
		log.Warn().Err(err).Msg("amadeus token cache read failed")
	} else if ok && tok.AccessToken != "" {
		return tok.AccessToken, nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.id)
	form.Set("client_secret", c.secret)

	resp, err := c.tr.Do(ctx, "token", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.base+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("amadeus token: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("amadeus token decode: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("amadeus token: empty access_token")
	}

	ttl := time.Duration(out.ExpiresIn)*time.Second - tokenSlack
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := c.tokens.Set(ctx, tokenKey, cachedToken{AccessToken: out.AccessToken}, ttl); err != nil {
		log.Warn().Err(err).Msg("amadeus token cache write failed")
	}
	log.Debug().Dur("ttl", ttl).Msg("amadeus token refreshed")
	return out.AccessToken, nil
}

// HotelsByCity lists every hotel the directory knows for cityCode. A 401
// drops the cached token and retries once.
func (c *Client) HotelsByCity(ctx context.Context, cityCode string) ([]map[string]any, error) {
	code := strings.ToUpper(strings.TrimSpace(cityCode))
	if code == "" {
		return nil, errors.New("amadeus: city code is required")
	}

	out, err := c.hotelsByCity(ctx, code)
	if errors.Is(err, domain.ErrUnauthorized) {
		_ = c.tokens.Del(ctx, tokenKey)
		out, err = c.hotelsByCity(ctx, code)
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("city %s: %w", code, domain.ErrNoHotels)
	}
	return out, nil
}

func (c *Client) hotelsByCity(ctx context.Context, code string) ([]map[string]any, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v1/reference-data/locations/hotels/by-city?cityCode=%s", c.base, url.QueryEscape(code))

	resp, err := c.tr.Do(ctx, "hotels_by_city", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("amadeus hotels decode: %w", err)
	}
	return body.Data, nil
}
