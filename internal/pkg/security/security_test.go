package security_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferdiebergado/friendsystem/internal/pkg/security"
)

func TestGenerateRandomBytesURLEncoded(t *testing.T) {
	t.Parallel()

	const length = 16

	first, err := security.GenerateRandomBytesURLEncoded(length)
	if err != nil {
		t.Fatal(err)
	}

	second, err := security.GenerateRandomBytesURLEncoded(length)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Errorf("two random values are equal: %q", first)
	}

	raw, err := base64.RawURLEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("decode %q: %v", first, err)
	}

	if len(raw) != length {
		t.Errorf("len(raw) = %d, want: %d", len(raw), length)
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, target, header, want string
		wantErr                    bool
	}{
		{"Bearer header", "/friends", "Bearer abc.def", "abc.def", false},
		{"Query parameter", "/events?token=xyz", "", "xyz", false},
		{"Header wins over query", "/events?token=xyz", "Bearer abc", "abc", false},
		{"Missing", "/friends", "", "", true},
		{"Wrong scheme", "/friends", "Basic dXNlcjpwYXNz", "", true},
		{"Empty bearer", "/friends", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, err := security.ExtractBearerToken(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("security.ExtractBearerToken(req) = %v, wantErr: %v", err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("security.ExtractBearerToken(req) = %q, want: %q", got, tt.want)
			}
		})
	}
}
