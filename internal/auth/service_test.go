package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/auth"
	"github.com/ferdiebergado/friendsystem/internal/config"
	timex "github.com/ferdiebergado/friendsystem/internal/pkg/time"
	"github.com/ferdiebergado/friendsystem/internal/platform/hash"
	"github.com/ferdiebergado/friendsystem/internal/platform/jwt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

const (
	testSecret = "proxy-secret"
	testHash   = "$argon2id$stored"
	testToken  = "signed.jwt.token"
)

var testPlayer = uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")

func newTestConfig(secretHash string) *config.Config {
	return &config.Config{
		Auth: &config.Auth{ClientSecretHash: secretHash},
		JWT: &config.JWT{
			Issuer:   "friendsystem",
			Audience: "proxy",
			TTL:      timex.Duration{Duration: time.Hour},
		},
	}
}

func TestService_IssueToken(t *testing.T) {
	t.Parallel()

	errHash := errors.New("corrupt hash")

	tests := []struct {
		name       string
		secretHash string
		verifyFunc func(plain, hashed string) (bool, error)
		wantErr    error
		wantToken  string
	}{
		{
			name:       "Valid secret",
			secretHash: testHash,
			verifyFunc: func(plain, hashed string) (bool, error) {
				return plain == testSecret && hashed == testHash, nil
			},
			wantToken: testToken,
		},
		{
			name:       "Wrong secret",
			secretHash: testHash,
			verifyFunc: func(_, _ string) (bool, error) { return false, nil },
			wantErr:    auth.ErrInvalidClient,
		},
		{
			name:       "Hash not configured",
			secretHash: "",
			wantErr:    auth.ErrNotConfigured,
		},
		{
			name:       "Verify fails",
			secretHash: testHash,
			verifyFunc: func(_, _ string) (bool, error) { return false, errHash },
			wantErr:    errHash,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotSubject string
			var gotTTL time.Duration
			var gotAudience []string
			provider := &auth.Provider{
				Cfg:    newTestConfig(tc.secretHash),
				Hasher: &hash.StubHasher{VerifyFunc: tc.verifyFunc},
				Signer: &jwt.StubSigner{
					SignFunc: func(subject string, audience []string, duration time.Duration) (string, error) {
						gotSubject, gotAudience, gotTTL = subject, audience, duration
						return testToken, nil
					},
				},
			}
			svc := auth.NewService(provider)

			params := auth.IssueTokenParams{ClientSecret: testSecret, PlayerID: testPlayer}
			token, err := svc.IssueToken(context.Background(), params)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("svc.IssueToken() = %v, want: %v", err, tc.wantErr)
			}

			if tc.wantErr != nil {
				return
			}

			if token.AccessToken != tc.wantToken {
				t.Errorf("token.AccessToken = %q, want: %q", token.AccessToken, tc.wantToken)
			}
			if token.TokenType != auth.TokenTypeBearer {
				t.Errorf("token.TokenType = %q, want: %q", token.TokenType, auth.TokenTypeBearer)
			}
			if gotSubject != testPlayer.String() {
				t.Errorf("signed subject = %q, want: %q", gotSubject, testPlayer)
			}
			if diff := cmp.Diff([]string{"proxy"}, gotAudience); diff != "" {
				t.Errorf("signed audience mismatch (-want +got):\n%s", diff)
			}
			if gotTTL != time.Hour {
				t.Errorf("signed ttl = %v, want: %v", gotTTL, time.Hour)
			}
		})
	}
}
