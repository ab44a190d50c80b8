package core

// User is the signed-in identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session pairs an opaque token with the user it was issued to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials are the values submitted on the login form.
type Credentials struct {
	Email    string
	Password string
}
