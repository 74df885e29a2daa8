package domain

import "strings"

// AuthType tags an authentication variant.
type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api_key"
	AuthBasic  AuthType = "basic"
)

// Auth is the closed set of authentication schemes the proxy can inject.
// Implementations: BearerAuth, APIKeyAuth, BasicAuth.
type Auth interface {
	Type() AuthType
	Validate() error
	sealed()
}

type BearerAuth struct {
	Token string
}

func (BearerAuth) Type() AuthType { return AuthBearer }
func (BearerAuth) sealed()        {}

func (a BearerAuth) Validate() error {
	if strings.TrimSpace(a.Token) == "" {
		return Invalid("Bearer token is required for bearer auth")
	}
	return nil
}

// APIKeyAuth injects Value under the header named Key.
type APIKeyAuth struct {
	Key   string
	Value string
}

func (APIKeyAuth) Type() AuthType { return AuthAPIKey }
func (APIKeyAuth) sealed()        {}

func (a APIKeyAuth) Validate() error {
	if strings.TrimSpace(a.Key) == "" || strings.TrimSpace(a.Value) == "" {
		return Invalid("API key name and value are required for API key auth")
	}
	return nil
}

type BasicAuth struct {
	Username string
	Password string
}

func (BasicAuth) Type() AuthType { return AuthBasic }
func (BasicAuth) sealed()        {}

func (a BasicAuth) Validate() error {
	if strings.TrimSpace(a.Username) == "" || a.Password == "" {
		return Invalid("Username and password are required for basic auth")
	}
	return nil
}

var errUnknownAuthType = Invalid("Invalid auth type. Must be: bearer, api_key, or basic")

// AuthSpec is the flat, tagged form of Auth used on the wire and in storage.
type AuthSpec struct {
	Type     AuthType `json:"type"               bson:"type"`
	Token    string   `json:"token,omitempty"    bson:"token,omitempty"`
	Key      string   `json:"key,omitempty"      bson:"key,omitempty"`
	Value    string   `json:"value,omitempty"    bson:"value,omitempty"`
	Username string   `json:"username,omitempty" bson:"username,omitempty"`
	Password string   `json:"password,omitempty" bson:"password,omitempty"`
}

// Variant resolves the tag without checking field completeness.
// Unknown tags are rejected.
func (s AuthSpec) Variant() (Auth, error) {
	switch AuthType(strings.ToLower(strings.TrimSpace(string(s.Type)))) {
	case AuthBearer:
		return BearerAuth{Token: s.Token}, nil
	case AuthAPIKey:
		return APIKeyAuth{Key: s.Key, Value: s.Value}, nil
	case AuthBasic:
		return BasicAuth{Username: s.Username, Password: s.Password}, nil
	default:
		return nil, errUnknownAuthType
	}
}

// Resolve returns the validated variant described by s.
func (s AuthSpec) Resolve() (Auth, error) {
	a, err := s.Variant()
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// SpecOf flattens a into its tagged form.
func SpecOf(a Auth) AuthSpec {
	switch v := a.(type) {
	case BearerAuth:
		return AuthSpec{Type: AuthBearer, Token: v.Token}
	case APIKeyAuth:
		return AuthSpec{Type: AuthAPIKey, Key: v.Key, Value: v.Value}
	case BasicAuth:
		return AuthSpec{Type: AuthBasic, Username: v.Username, Password: v.Password}
	default:
		return AuthSpec{}
	}
}
