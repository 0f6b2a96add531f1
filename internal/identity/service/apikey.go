package service

import (
	"context"
	"fmt"

	id "warden/pkg/domain"
)

// issueAPIKey generates a key, persists it sealed with its lookup digest and
// returns the plaintext. Callers must not log the result.
func issueAPIKey(ctx context.Context, users UserStore, tokens Tokens, userID id.UserID) (string, error) {
	key, err := tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	sealed, err := tokens.Seal(key)
	if err != nil {
		return "", fmt.Errorf("seal api key: %w", err)
	}
	if err := users.SetAPIKey(ctx, userID, sealed, tokens.Digest(key)); err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}
	return key, nil
}
