package token

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/grpc/metadata"
)

// Tokens attaches a static bearer token to every RPC.
type Tokens struct {
	source oauth2.TokenSource
}

func New(accessToken string) *Tokens {
	return &Tokens{
		source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	}
}

func (t *Tokens) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	tok, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	return map[string]string{"authorization": tok.Type() + " " + tok.AccessToken}, nil
}

func (t *Tokens) RequireTransportSecurity() bool {
	return false
}

// Valid reports whether the incoming metadata carries accessToken.
// The keys within metadata.MD are normalized to lowercase.
func Valid(md metadata.MD, accessToken string) bool {
	want := fmt.Sprintf("Bearer %s", accessToken)
	for _, v := range md["authorization"] {
		if v == want {
			return true
		}
	}
	return false
}
