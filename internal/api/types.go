// ABOUTME: Wire types shared by the sweet shop HTTP client operations.
// ABOUTME: Mirrors the JSON shapes of the /api/v1 service surface.

package api

// Sweet is one inventory line item as returned by the service. The ID is
// assigned server-side and immutable once created.
type Sweet struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Draft is the payload for creating or updating a sweet. It carries no ID;
// the target is either assigned by the service (create) or named in the URL
// (update).
type Draft struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Filters narrows a search. Nil fields are omitted from the query string
// entirely rather than sent as empty or zero values.
type Filters struct {
	Name     *string
	Category *string
	MinPrice *float64
	MaxPrice *float64
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Name == nil && f.Category == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// User is the registration confirmation returned by POST /auth/register.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// loginResponse is the JSON response from POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// credentials is the JSON request body for the auth endpoints.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
