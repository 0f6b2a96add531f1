package domain

// AccountType is the kind of external identity an auth account links.
type AccountType string

const (
	AccountTypeOAuth       AccountType = "oauth"
	AccountTypeOIDC        AccountType = "oidc"
	AccountTypeEmail       AccountType = "email"
	AccountTypeCredentials AccountType = "credentials"
)

// IsValid reports whether t is a known account type. Empty means unspecified.
func (t AccountType) IsValid() bool {
	switch t {
	case "", AccountTypeOAuth, AccountTypeOIDC, AccountTypeEmail, AccountTypeCredentials:
		return true
	}
	return false
}

func (t AccountType) String() string {
	return string(t)
}
