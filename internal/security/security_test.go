package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"hr_portal/internal/storage"
)

// cheap parameters keep the tests fast
var testParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	ph, err := NewPasswordHasher(testParams)
	require.NoError(t, err)

	hash, err := ph.Hash("Secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := ph.Verify("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ph.Verify("secret123", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	// a hasher with other defaults still verifies using the encoded params
	ok, err = DefaultPasswordHasher().Verify("Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	ph, err := NewPasswordHasher(testParams)
	require.NoError(t, err)

	a, err := ph.Hash("same")
	require.NoError(t, err)
	b, err := ph.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_InvalidHash(t *testing.T) {
	ph := DefaultPasswordHasher()
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=18$m=1024,t=1,p=1$YQ$YQ", "$argon2id$v=19$m=x$YQ$YQ"} {
		_, err := ph.Verify("x", h)
		assert.Error(t, err, h)
	}
}

func TestNewPasswordHasher_RejectsWeakParams(t *testing.T) {
	p := testParams
	p.Memory = 10
	_, err := NewPasswordHasher(p)
	assert.Error(t, err)
}

func TestPasswordStrength(t *testing.T) {
	ps := DefaultPasswordStrength()
	assert.NoError(t, ps.Check("Abcdefg1"))
	assert.ErrorIs(t, ps.Check("Ab1"), ErrWeakPassword)
	assert.ErrorIs(t, ps.Check("abcdefg1"), ErrWeakPassword)
	assert.ErrorIs(t, ps.Check("ABCDEFG1"), ErrWeakPassword)
	assert.ErrorIs(t, ps.Check("Abcdefgh"), ErrWeakPassword)
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"/performance":          "/performance",
		"/profile?tab=docs":     "/profile?tab=docs",
		"":                      "/home",
		"performance":           "/home",
		"//evil.example":        "/home",
		"https://evil.example/": "/home",
		`/\evil.example`:        "/home",
		"/pay\x00roll":          "/payroll",
	}
	for in, want := range tests {
		assert.Equal(t, want, LocalPath(in, "/home"), "input %q", in)
	}
}

func TestLocalPath_NeverLeavesSite(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		out := LocalPath(in, "/")
		u, err := url.Parse(out)
		if err != nil || u.Host != "" || u.Scheme != "" || !strings.HasPrefix(out, "/") || strings.HasPrefix(out, "//") {
			t.Fatalf("LocalPath(%q) = %q", in, out)
		}
	})
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidEmail("jane.doe@example.com"))
	assert.False(t, IsValidEmail("jane.doe@"))
	assert.True(t, IsValidUsername("jane.doe"))
	assert.False(t, IsValidUsername("j"))
}

func newCSRF(store storage.Store) *CSRFProtection {
	return NewCSRFProtection(&CSRFConfig{
		StoreFor: func(*http.Request) (storage.Store, bool) { return store, store != nil },
	})
}

func TestCSRF_IssuesStableToken(t *testing.T) {
	store := storage.NewMemoryStore(0)
	csrf := newCSRF(store)

	var seen []string
	h := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, GetCSRFToken(r))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])
}

func TestCSRF_ValidatesUnsafeMethods(t *testing.T) {
	store := storage.NewMemoryStore(0)
	csrf := newCSRF(store)
	token, err := csrf.Token(context.Background(), store)
	require.NoError(t, err)

	called := 0
	h := csrf.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ }))

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusForbidden, post("csrf_token=wrong"))
	assert.Equal(t, http.StatusOK, post("csrf_token="+url.QueryEscape(token)))
	assert.Equal(t, 1, called)
}

func TestCSRF_RejectsWithoutProfile(t *testing.T) {
	h := newCSRF(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
