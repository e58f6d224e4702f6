package models

// Identity is the signed-in user as reported by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Token       string `json:"-"`
}

// Claims represents validated token claims
type Claims struct {
	UID         string `json:"uid"`
	DisplayName string `json:"name"`
	PhotoURL    string `json:"picture,omitempty"`
	Exp         int64  `json:"exp"`
}
