package session

// Credentials es el body de POST /login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token es lo que recibe el cliente tras un login correcto.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

const tokenType = "Bearer"
