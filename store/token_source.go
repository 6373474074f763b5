package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenSource exposes the persisted session token as an oauth2.TokenSource. An absent token
// yields an empty (invalid) oauth2.Token rather than an error so callers can send
// unauthenticated requests.
type TokenSource struct {
	store Store
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

func NewTokenSource(st Store) *TokenSource {
	return &TokenSource{store: st}
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	value, ok, err := ts.store.Get(context.Background(), KeyToken)
	if err != nil {
		return nil, fmt.Errorf("[TokenSource] store.Get: %w", err)
	}
	if !ok {
		return &oauth2.Token{}, nil
	}
	return &oauth2.Token{AccessToken: value, TokenType: "Bearer"}, nil
}
