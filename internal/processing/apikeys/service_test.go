package apikeys

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mockRepo struct {
	createFn   func(ctx context.Context, key *APIKey) error
	findFn     func(ctx context.Context, hash string) (*APIKey, error)
	listFn     func(ctx context.Context, ownerID string) ([]*APIKey, error)
	revokeFn   func(ctx context.Context, id, ownerID string) (bool, error)
	lastUsedFn func(ctx context.Context, id string, at time.Time) error

	created []*APIKey
}

func (m *mockRepo) Create(ctx context.Context, key *APIKey) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, key); err != nil {
			return err
		}
	}
	cp := *key
	m.created = append(m.created, &cp)
	return nil
}
func (m *mockRepo) FindByHash(ctx context.Context, hash string) (*APIKey, error) {
	return m.findFn(ctx, hash)
}
func (m *mockRepo) ListActiveByOwner(ctx context.Context, ownerID string) ([]*APIKey, error) {
	return m.listFn(ctx, ownerID)
}
func (m *mockRepo) Revoke(ctx context.Context, id, ownerID string) (bool, error) {
	return m.revokeFn(ctx, id, ownerID)
}
func (m *mockRepo) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	if m.lastUsedFn == nil {
		return nil
	}
	return m.lastUsedFn(ctx, id, at)
}

var fixedNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestAuthority(repo *mockRepo) *Authority {
	a := NewAuthority(repo)
	a.now = func() time.Time { return fixedNow }
	a.newID = func() string { return "key-1" }
	return a
}

func intPtr(v int) *int { return &v }

func TestIssue_StoresHashNotSecret(t *testing.T) {
	repo := &mockRepo{}
	a := newTestAuthority(repo)

	issued, err := a.Issue(context.Background(), "user-1", "  ci key ", nil)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(issued.Secret, SecretPrefix) || len(issued.Secret) != len(SecretPrefix)+48 {
		t.Errorf("unexpected secret format %q", issued.Secret)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 stored key, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if stored.KeyHash != HashSecret(issued.Secret) {
		t.Error("stored hash does not match issued secret")
	}
	if strings.Contains(stored.KeyHash, issued.Secret) {
		t.Error("plaintext secret must not be stored")
	}
	if stored.Name != "ci key" {
		t.Errorf("expected trimmed name, got %q", stored.Name)
	}
	if stored.Prefix != issued.Secret[:len(SecretPrefix)+8] {
		t.Errorf("unexpected display prefix %q", stored.Prefix)
	}
	if stored.ExpiresAt != nil {
		t.Error("expected no expiry")
	}
}

func TestIssue_Expiry(t *testing.T) {
	repo := &mockRepo{}
	a := newTestAuthority(repo)

	issued, err := a.Issue(context.Background(), "user-1", "short lived", intPtr(30))
	if err != nil {
		t.Fatal(err)
	}
	want := fixedNow.Add(30 * 24 * time.Hour)
	if issued.ExpiresAt == nil || !issued.ExpiresAt.Equal(want) {
		t.Errorf("got expiry %v, want %v", issued.ExpiresAt, want)
	}
}

func TestIssue_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		owner   string
		keyName string
		days    *int
		wantErr error
	}{
		{"no owner", "", "key", nil, ErrOwnerRequired},
		{"blank name", "user-1", "   ", nil, ErrInvalidName},
		{"long name", "user-1", strings.Repeat("n", 101), nil, ErrInvalidName},
		{"zero days", "user-1", "key", intPtr(0), ErrInvalidExpiry},
		{"negative days", "user-1", "key", intPtr(-3), ErrInvalidExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			a := newTestAuthority(repo)
			_, err := a.Issue(context.Background(), tt.owner, tt.keyName, tt.days)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if len(repo.created) != 0 {
				t.Error("nothing should be stored on invalid input")
			}
		})
	}
}

func TestIssue_SecretsAreUnique(t *testing.T) {
	a := newTestAuthority(&mockRepo{})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		issued, err := a.Issue(context.Background(), "user-1", "k", nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[issued.Secret] {
			t.Fatalf("duplicate secret after %d issues", i)
		}
		seen[issued.Secret] = true
	}
}

func TestValidate(t *testing.T) {
	secret := "sk_0123456789abcdef0123456789abcdef0123456789abcdef"
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name    string
		key     *APIKey
		findErr error
		wantErr error
	}{
		{"active", &APIKey{ID: "k1"}, nil, nil},
		{"not expired yet", &APIKey{ID: "k1", ExpiresAt: &future}, nil, nil},
		{"unknown", nil, ErrNotFound, ErrInvalidCredential},
		{"revoked", &APIKey{ID: "k1", Revoked: true}, nil, ErrInvalidCredential},
		{"expired", &APIKey{ID: "k1", ExpiresAt: &past}, nil, ErrInvalidCredential},
		{"expires exactly now", &APIKey{ID: "k1", ExpiresAt: &fixedNow}, nil, ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotHash string
			repo := &mockRepo{
				findFn: func(_ context.Context, hash string) (*APIKey, error) {
					gotHash = hash
					return tt.key, tt.findErr
				},
			}
			a := newTestAuthority(repo)

			key, err := a.Validate(context.Background(), secret)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if gotHash != HashSecret(secret) {
				t.Error("lookup must use the secret hash")
			}
			if tt.wantErr == nil && key.ID != "k1" {
				t.Errorf("unexpected key %+v", key)
			}
		})
	}
}

func TestValidate_EmptySecretSkipsStore(t *testing.T) {
	repo := &mockRepo{
		findFn: func(context.Context, string) (*APIKey, error) {
			t.Fatal("store must not be consulted")
			return nil, nil
		},
	}
	a := newTestAuthority(repo)

	if _, err := a.Validate(context.Background(), "  "); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("got %v, want ErrInvalidCredential", err)
	}
}

func TestValidate_StoreErrorIsNotInvalidCredential(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &mockRepo{
		findFn: func(context.Context, string) (*APIKey, error) { return nil, storeErr },
	}
	a := newTestAuthority(repo)

	_, err := a.Validate(context.Background(), "sk_abc")
	if errors.Is(err, ErrInvalidCredential) {
		t.Error("store failures must not look like bad credentials")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestTouch_UsesClock(t *testing.T) {
	var gotID string
	var gotAt time.Time
	repo := &mockRepo{
		lastUsedFn: func(_ context.Context, id string, at time.Time) error {
			gotID, gotAt = id, at
			return nil
		},
	}
	a := newTestAuthority(repo)

	if err := a.Touch(context.Background(), "k1"); err != nil {
		t.Fatal(err)
	}
	if gotID != "k1" || !gotAt.Equal(fixedNow) {
		t.Errorf("got (%q, %v)", gotID, gotAt)
	}
}

func TestRevoke(t *testing.T) {
	t.Run("matching owner", func(t *testing.T) {
		called := false
		repo := &mockRepo{
			revokeFn: func(_ context.Context, id, owner string) (bool, error) {
				called = id == "k1" && owner == "user-1"
				return true, nil
			},
		}
		if err := newTestAuthority(repo).Revoke(context.Background(), "k1", "user-1"); err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("expected repository revoke with id and owner")
		}
	})

	t.Run("no match is silent", func(t *testing.T) {
		repo := &mockRepo{
			revokeFn: func(context.Context, string, string) (bool, error) { return false, nil },
		}
		if err := newTestAuthority(repo).Revoke(context.Background(), "k1", "someone-else"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("missing owner skips store", func(t *testing.T) {
		repo := &mockRepo{
			revokeFn: func(context.Context, string, string) (bool, error) {
				t.Fatal("store must not be consulted")
				return false, nil
			},
		}
		if err := newTestAuthority(repo).Revoke(context.Background(), "k1", ""); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestListForOwner_EmptyOwner(t *testing.T) {
	a := newTestAuthority(&mockRepo{})
	keys, err := a.ListForOwner(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if keys == nil || len(keys) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", keys)
	}
}
