package hatena

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/hatena-sync/internal/config"
	"github.com/Tiliavir/hatena-sync/internal/timecalc"
)

// NewHTTPClient returns an *http.Client that authenticates every request
// with the scheme selected by cfg.Auth and gives up after cfg.Timeout().
func NewHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout(),
		Transport: authTransport(cfg, http.DefaultTransport),
	}
}

func authTransport(cfg config.Config, base http.RoundTripper) http.RoundTripper {
	switch cfg.Auth {
	case "basic":
		return &basicTransport{username: cfg.Username, password: cfg.APIKey, base: base}
	case "bearer":
		return &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}),
			Base:   base,
		}
	default:
		return &wsseTransport{username: cfg.Username, password: cfg.APIKey, base: base, now: time.Now}
	}
}

type basicTransport struct {
	username, password string
	base               http.RoundTripper
}

func (t *basicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(r)
}

// wsseTransport signs requests with a fresh WSSE UsernameToken, the scheme
// Hatena documents for AtomPub.
type wsseTransport struct {
	username, password string
	base               http.RoundTripper
	now                func() time.Time
}

func (t *wsseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	nonce := uuid.New()
	r := req.Clone(req.Context())
	r.Header.Set("X-WSSE", WSSEHeader(t.username, t.password, nonce[:], t.now()))
	r.Header.Set("Authorization", `WSSE profile="UsernameToken"`)
	return t.base.RoundTrip(r)
}

// WSSEHeader builds the X-WSSE header value:
// PasswordDigest = Base64(SHA1(nonce + created + password)).
func WSSEHeader(username, password string, nonce []byte, created time.Time) string {
	ts := timecalc.WSSECreated(created)

	h := sha1.New()
	h.Write(nonce)
	h.Write([]byte(ts))
	h.Write([]byte(password))
	digest := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf(`UsernameToken Username="%s", PasswordDigest="%s", Nonce="%s", Created="%s"`,
		username, digest, base64.StdEncoding.EncodeToString(nonce), ts)
}
