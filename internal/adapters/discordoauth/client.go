package discordoauth

import (
	"context"
	"net/url"
	"time"
)

// Client habla con la API de Discord para el flujo OAuth2 del dashboard.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string

	http httpDoer
	base string
}

func New(clientID, clientSecret, redirectURI string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		base:         defaultBase,
	}
	c.http = defaultHTTPClient()
	for _, o := range opts {
		o(c)
	}
	return c
}

// AuthorizeURL: adonde mandamos al usuario para loguearse.
func (c *Client) AuthorizeURL() string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify guilds")
	return c.base + "/oauth2/authorize?" + q.Encode()
}

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// ExpiresAt es el vencimiento absoluto del access token; el colchón para
// no usar tokens al borde lo aplica IsTokenExpired.
func (t Token) ExpiresAt() time.Time {
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	var t Token
	err := c.doForm(ctx, "/oauth2/token", form, &t)
	return t, err
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (Token, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var t Token
	err := c.doForm(ctx, "/oauth2/token", form, &t)
	return t, err
}

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var u User
	err := c.doJSON(ctx, "GET", "/users/@me", accessToken, &u)
	return u, err
}

type UserGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

func (c *Client) GetUserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error) {
	var gs []UserGuild
	err := c.doJSON(ctx, "GET", "/users/@me/guilds", accessToken, &gs)
	return gs, err
}
