package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRequest() order.SessionRequest {
	return order.SessionRequest{
		OrderID: "order-1",
		Lines: []order.SessionLine{
			{Name: "Vase", UnitAmount: 2000, Quantity: 1},
			{Name: "Delivery Charges", UnitAmount: 1000, Quantity: 1},
		},
		SuccessURL: "https://shop.example.com/verify?success=true&orderId=order-1",
		CancelURL:  "https://shop.example.com/verify?success=false&orderId=order-1",
	}
}

func TestClient_CreateSession(t *testing.T) {
	t.Run("should post form-encoded session and return redirect URL", func(t *testing.T) {
		// given
		var gotForm map[string][]string
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"sess_1","url":"https://pay.example.com/sess_1"}`))
		}))
		defer server.Close()

		client := New(server.URL, "/v1/checkout/sessions", "sk_test", "usd", server.Client())

		// when
		sess, err := client.CreateSession(context.Background(), sessionRequest())

		// then
		require.NoError(t, err)
		assert.Equal(t, "sess_1", sess.ID)
		assert.Equal(t, "https://pay.example.com/sess_1", sess.URL)

		assert.Equal(t, "Bearer sk_test", gotAuth)
		assert.Equal(t, []string{"payment"}, gotForm["mode"])
		assert.Equal(t, []string{"usd"}, gotForm["currency"])
		assert.Equal(t, []string{"order-1"}, gotForm["client_reference_id"])
		assert.Equal(t, []string{"Vase"}, gotForm["line_items[0][name]"])
		assert.Equal(t, []string{"2000"}, gotForm["line_items[0][unit_amount]"])
		assert.Equal(t, []string{"Delivery Charges"}, gotForm["line_items[1][name]"])
		assert.Equal(t, []string{"1000"}, gotForm["line_items[1][unit_amount]"])
	})

	t.Run("non-2xx responses surface as errors", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":"card_declined"}`))
		}))
		defer server.Close()

		client := New(server.URL, "/v1/checkout/sessions", "sk_test", "usd", server.Client())

		// when
		_, err := client.CreateSession(context.Background(), sessionRequest())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "card_declined")
	})

	t.Run("missing redirect URL is an error", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"sess_1"}`))
		}))
		defer server.Close()

		client := New(server.URL, "/v1/checkout/sessions", "sk_test", "usd", server.Client())

		// when
		_, err := client.CreateSession(context.Background(), sessionRequest())

		// then
		require.Error(t, err)
	})
}
