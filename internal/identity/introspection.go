package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	dErrors "farmgate/pkg/domain-errors"
)

// userInfoPath is the identity provider's self-lookup endpoint. The provider
// validates the bearer token and returns the caller's profile.
const userInfoPath = "/api/v3/core/user/me/"

// IntrospectionClient validates bearer tokens against the external identity
// provider. Any non-success response, network failure, or timeout yields
// Unauthenticated; there is no visitor fallback.
type IntrospectionClient struct {
	baseURL string
	client  *http.Client
}

// NewIntrospectionClient constructs a client for the given provider base URL.
// The timeout bounds every introspection call.
func NewIntrospectionClient(baseURL string, timeout time.Duration) *IntrospectionClient {
	return &IntrospectionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// userInfoResponse mirrors the provider's profile payload. Groups arrive as
// objects; only the name is relevant here.
type userInfoResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Groups   []struct {
		Name string `json:"name"`
	} `json:"groups"`
}

// Resolve implements Resolver for the bearer-token path.
func (ic *IntrospectionClient) Resolve(r *http.Request) (Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "missing bearer token")
	}
	return ic.Introspect(r.Context(), token)
}

// Introspect validates the token with the identity provider and builds the
// Identity from the returned profile.
func (ic *IntrospectionClient) Introspect(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ic.baseURL+userInfoPath, nil)
	if err != nil {
		return Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "build introspection request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ic.client.Do(req)
	if err != nil {
		return Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated,
			fmt.Sprintf("token rejected by identity provider (status %d)", resp.StatusCode))
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "malformed identity provider response")
	}

	username := strings.TrimSpace(info.Username)
	if username == "" {
		return Identity{}, dErrors.New(dErrors.CodeUnauthenticated, "identity provider returned no username")
	}

	groups := make([]string, 0, len(info.Groups))
	for _, g := range info.Groups {
		groups = append(groups, g.Name)
	}

	return New(username, info.Email, groups), nil
}
