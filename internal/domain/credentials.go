package domain

// Credentials is the opaque capability handed to the session worker.
// The password never appears in String output so the value is safe to
// log and to embed in error messages.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are populated
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// String renders the credentials with the password redacted
func (c Credentials) String() string {
	if c.Password == "" {
		return c.Username
	}
	return c.Username + ":<redacted>"
}
