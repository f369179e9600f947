package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"marketplace-gateway/internal/store"
	"marketplace-gateway/internal/store/testutil"

	"github.com/stretchr/testify/require"
)

func TestPaymentStatus(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedProfile(t, s.db, "s1", "student", "pending", time.Time{})
	testutil.SeedProfile(t, s.db, "s2", "student", "approved", time.Time{})

	_, err := store.NewTransactionRepository(s.db).Create(context.Background(), store.Transaction{
		UserID: "s1", Type: "deposit", Amount: 5000, Currency: "USD", Status: "success", Reference: "ref-42",
	})
	require.NoError(t, err)

	t.Run("Unauthenticated", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/payments/status?reference=ref-42", "", "")
		requireError(t, w, http.StatusUnauthorized, "Unauthorized")
	})

	t.Run("MissingReference", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/payments/status", "s1", "")
		requireError(t, w, http.StatusBadRequest, "reference required")
	})

	t.Run("OwnTransaction", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/payments/status?reference=ref-42", "s1", "")
		require.Equal(t, http.StatusOK, w.Code)
		txn := decode(t, w)["transaction"].(map[string]any)
		require.Equal(t, "success", txn["status"])
		require.Equal(t, "ref-42", txn["reference"])
		require.EqualValues(t, 5000, txn["amount"])
	})

	t.Run("OtherUsersTransaction", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/payments/status?reference=ref-42", "s2", "")
		requireError(t, w, http.StatusNotFound, "Transaction not found")
	})
}
