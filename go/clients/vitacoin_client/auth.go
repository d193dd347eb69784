package vitacoin_client

import (
	"encoding/json"
	"fmt"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        models.Identity `json:"user"`
}

// Login exchanges credentials for a bearer token and the identity it belongs
// to. The token is not attached to the client automatically; the session
// store owns that side effect.
func (c *VitacoinClient) Login(email, password string) (*LoginResponse, error) {
	body, err := c.PostJSON(LoginEndpoint, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &response, nil
}

// Register creates an account. The caller must still Login separately; the
// backend does not issue a token on registration.
func (c *VitacoinClient) Register(name, email, password string) (*models.Identity, error) {
	body, err := c.PostJSON(RegisterEndpoint, RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &identity, nil
}

// Me fetches the current identity for the attached token.
func (c *VitacoinClient) Me() (*models.Identity, error) {
	body, err := c.Get(MeEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get current identity: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return &identity, nil
}
