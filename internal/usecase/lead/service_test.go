package lead

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain/record"
	domsession "example.com/storefront/internal/domain/session"
	"example.com/storefront/internal/usecase/idempotency"
	"example.com/storefront/internal/validation"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type mockStore struct {
	mu          sync.Mutex
	collections map[string][]record.Record
	err         error
}

func newMockStore() *mockStore {
	return &mockStore{collections: make(map[string][]record.Record)}
}

func (m *mockStore) Append(ctx context.Context, collection string, rec record.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	id := fmt.Sprintf("rec-%d", len(m.collections[collection])+1)
	m.collections[collection] = append(m.collections[collection], record.Stamp(rec, id, testNow))
	return id, nil
}

func (m *mockStore) AppendSequenced(ctx context.Context, collection string, rec record.Record, seq record.Sequence) (string, error) {
	return "", errors.New("not used")
}

func (m *mockStore) Update(ctx context.Context, collection string, match func(record.Record) bool, mutate func(record.Record) error) (bool, error) {
	return false, errors.New("not used")
}

func (m *mockStore) ReadAll(ctx context.Context, collection string) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]record.Record(nil), m.collections[collection]...), nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	leads []string
}

func (n *recordingNotifier) LeadReceived(collection string, rec record.Record) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, collection+"/"+rec.ID())
}

func newTestService() (*Service, *mockStore, *recordingNotifier, *domsession.Context) {
	store := newMockStore()
	notifier := &recordingNotifier{}
	guard := idempotency.NewGuard()
	sess := &domsession.Context{ID: "s1"}
	guard.Issue(sess)
	svc := NewService(store, guard, notifier, validation.New(), nil)
	svc.now = func() time.Time { return testNow }
	return svc, store, notifier, sess
}

func TestSubmitContact(t *testing.T) {
	svc, store, notifier, sess := newTestService()
	token := sess.IdempotencyToken

	id, err := svc.SubmitContact(context.Background(), sess, ContactRequest{
		Name:             " Grace ",
		Email:            "grace@example.com",
		Message:          "Do you ship to Lagos?",
		IdempotencyToken: token,
	})
	require.NoError(t, err)
	require.Equal(t, "rec-1", id)
	require.NotEqual(t, token, sess.IdempotencyToken)

	recs, err := store.ReadAll(context.Background(), record.CollectionContacts)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "Grace", recs[0]["name"])
	require.Equal(t, "2025-06-01T10:00:00Z", recs[0][record.FieldCreatedAt])
	require.Equal(t, []string{"contacts/rec-1"}, notifier.leads)
}

func TestSubmitContact_StaleToken(t *testing.T) {
	svc, store, notifier, sess := newTestService()

	_, err := svc.SubmitContact(context.Background(), sess, ContactRequest{
		Name: "Grace", Email: "grace@example.com", Message: "hi", IdempotencyToken: "old",
	})
	require.ErrorIs(t, err, ErrStaleForm)
	require.Empty(t, store.collections)
	require.Empty(t, notifier.leads)
}

func TestSubmitDistributorApplication_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*DistributorRequest)
		wantField string
	}{
		{name: "missing company", mutate: func(r *DistributorRequest) { r.Company = "" }, wantField: "company"},
		{name: "bad email", mutate: func(r *DistributorRequest) { r.Email = "nope" }, wantField: "email"},
		{name: "bad website", mutate: func(r *DistributorRequest) { r.Website = "not a url" }, wantField: "website"},
		{name: "missing country", mutate: func(r *DistributorRequest) { r.Country = "   " }, wantField: "country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _, sess := newTestService()
			token := sess.IdempotencyToken
			req := DistributorRequest{
				Company:          "Acme Retail",
				ContactName:      "Wile",
				Email:            "wile@acme.test",
				Phone:            "+234 1 000 0000",
				Country:          "NG",
				Website:          "https://acme.test",
				IdempotencyToken: token,
			}
			tt.mutate(&req)

			_, err := svc.SubmitDistributorApplication(context.Background(), sess, req)
			require.ErrorIs(t, err, ErrValidation)
			var ferr *FieldError
			require.True(t, errors.As(err, &ferr))
			require.Equal(t, tt.wantField, ferr.Field)
			require.Equal(t, token, sess.IdempotencyToken)
			require.Empty(t, store.collections)
		})
	}
}

func TestSubmitDistributorApplication_StoreFailureKeepsToken(t *testing.T) {
	svc, store, notifier, sess := newTestService()
	store.err = record.ErrUnwritable
	token := sess.IdempotencyToken

	_, err := svc.SubmitDistributorApplication(context.Background(), sess, DistributorRequest{
		Company: "Acme", ContactName: "Wile", Email: "wile@acme.test", Phone: "1", Country: "NG",
		IdempotencyToken: token,
	})
	require.ErrorIs(t, err, record.ErrUnwritable)
	require.Equal(t, token, sess.IdempotencyToken)
	require.Empty(t, notifier.leads)
}
