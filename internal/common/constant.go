package common

// AuthTokenHeaderName is the HTTP header that carries the session token on
// requests to protected endpoints. The value is the raw opaque token and is
// compared byte for byte against the stored one.
const AuthTokenHeaderName = "Authorization"

// BirthdayLayout is the wire format for the optional birthday field.
const BirthdayLayout = "2006-01-02"
