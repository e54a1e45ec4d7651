package utils

// AccessToken is the claims payload the external identity provider signs
// into every access token. The server trusts {ID, Role} from a verified
// token and re-checks only ownership invariants per operation.
type AccessToken struct {
	ID   uint   `json:"id"`
	Role string `json:"role"` // tenant, landlord, admin
}
