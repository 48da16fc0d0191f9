//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"storefront/internal/app"
	apphttp "storefront/internal/controller/http"
	"storefront/internal/controller/http/handlers"
	"storefront/internal/domain/delivery"
	"storefront/internal/domain/order"
	"storefront/internal/external/blobstore"
	"storefront/internal/external/checkout"
	cart_repo "storefront/internal/repo/cart"
	delivery_repo "storefront/internal/repo/delivery"
	order_repo "storefront/internal/repo/order"
	"storefront/internal/testinfra"
	"storefront/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "integration-secret"

type testEnv struct {
	server *httptest.Server
	pg     *testinfra.PostgresContainer
	rd     *testinfra.RedisContainer
	carts  *cart_repo.RedisCartStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pg, err := testinfra.NewPostgres(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Cleanup(ctx) })

	rd, err := testinfra.NewRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { rd.Cleanup(ctx) })

	// Provider stubs: the checkout backend always opens a session, the
	// blob store always accepts the slip.
	checkoutStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":  "sess_" + uuid.NewString(),
			"url": "https://checkout.test/pay/" + uuid.NewString(),
		})
	}))
	t.Cleanup(checkoutStub.Close)

	slipStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://cdn.test/slips/" + uuid.NewString() + ".png",
		})
	}))
	t.Cleanup(slipStub.Close)

	l := logger.New("error")

	orderRepo := order_repo.NewPgOrderRepo(pg.Pool)
	deliveryRepo := delivery_repo.NewPgDeliveryRepo(pg.Pool)
	carts := cart_repo.NewRedisCartStore(rd.Client)

	checkoutClient := checkout.New(checkoutStub.URL, "/v1/checkout/sessions", "sk_test", "usd", &http.Client{Timeout: 5 * time.Second})
	slipStore := blobstore.New(slipStub.URL, "bank_slips", &http.Client{Timeout: 5 * time.Second})

	orderService := order.NewService(orderRepo, checkoutClient, slipStore, carts, l, 10)
	deliveryService := delivery.NewService(deliveryRepo)

	router := apphttp.NewRouter(
		handlers.NewOrderHandler(orderService),
		handlers.NewDeliveryHandler(deliveryService),
		jwtSecret,
	)

	engine := app.NewGinEngine(l)
	router.SetUp(engine)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return &testEnv{server: server, pg: pg, rd: rd, carts: carts}
}

func mintToken(t *testing.T, userID uuid.UUID, admin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"admin": admin,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return token
}

func orderPayload() map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": "prod-1", "name": "Vase", "price": 20, "size": "M", "quantity": 1},
		},
		"amount": 30,
		"address": map[string]string{
			"firstName": "Ada", "lastName": "Byron", "email": "ada@example.com",
			"street": "1 King St", "city": "London", "state": "LDN",
			"zipcode": "E1", "country": "UK", "phone": "555-0101",
		},
	}
}

func TestCODFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := uuid.New()
	token := mintToken(t, user, false)

	require.NoError(t, env.carts.SetItem(ctx, user, "prod-1:M", "1"))

	placed := POST[placedResponse](t, env.server.URL, "/api/order/place", token, orderPayload(), http.StatusOK)
	assert.True(t, placed.Success)
	assert.NotEmpty(t, placed.OrderID)

	// Cart drains on a durable cod order.
	items, err := env.carts.Items(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, items)

	mine := POST[ordersResponse](t, env.server.URL, "/api/order/userorders", token, nil, http.StatusOK)
	require.Len(t, mine.Orders, 1)
	assert.Equal(t, order.MethodCOD, mine.Orders[0].PaymentMethod)
	assert.Equal(t, order.StatusNotPaid, mine.Orders[0].Status)
	assert.False(t, mine.Orders[0].Payment)
}

func TestHostedCheckoutFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := uuid.New()
	token := mintToken(t, user, false)

	require.NoError(t, env.carts.SetItem(ctx, user, "prod-1:M", "1"))

	placed := POST[placedResponse](t, env.server.URL, "/api/order/stripe", token, orderPayload(), http.StatusOK)
	assert.True(t, placed.Success)
	assert.NotEmpty(t, placed.URL)

	// Cart stays put until the payment is confirmed.
	items, err := env.carts.Items(ctx, user)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	t.Run("confirmed payment marks order paid and drains cart", func(t *testing.T) {
		verify := map[string]string{"orderId": placed.OrderID, "success": "true"}
		POST[map[string]interface{}](t, env.server.URL, "/api/order/verify", token, verify, http.StatusOK)

		mine := POST[ordersResponse](t, env.server.URL, "/api/order/userorders", token, nil, http.StatusOK)
		require.Len(t, mine.Orders, 1)
		assert.Equal(t, order.StatusPaid, mine.Orders[0].Status)
		assert.True(t, mine.Orders[0].Payment)

		items, err := env.carts.Items(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, items)

		// Replay is harmless.
		POST[map[string]interface{}](t, env.server.URL, "/api/order/verify", token, verify, http.StatusOK)
	})

	t.Run("declined payment discards the order", func(t *testing.T) {
		declined := POST[placedResponse](t, env.server.URL, "/api/order/stripe", token, orderPayload(), http.StatusOK)

		verify := map[string]string{"orderId": declined.OrderID, "success": "false"}
		POST[map[string]interface{}](t, env.server.URL, "/api/order/verify", token, verify, http.StatusOK)

		mine := POST[ordersResponse](t, env.server.URL, "/api/order/userorders", token, nil, http.StatusOK)
		for _, o := range mine.Orders {
			assert.NotEqual(t, declined.OrderID, o.ID)
		}

		// Declined reconcile of an already-removed order is a no-op.
		POST[map[string]interface{}](t, env.server.URL, "/api/order/verify", token, verify, http.StatusOK)
	})
}

func TestBankSlipFlow(t *testing.T) {
	env := setupTestEnv(t)
	user := uuid.New()
	token := mintToken(t, user, false)

	placed := postBankSlip(t, env.server.URL, token, orderPayload(), []byte("slip-bytes"), http.StatusOK)
	assert.True(t, placed.Success)

	mine := POST[ordersResponse](t, env.server.URL, "/api/order/userorders", token, nil, http.StatusOK)
	require.Len(t, mine.Orders, 1)
	assert.Equal(t, order.MethodBankSlip, mine.Orders[0].PaymentMethod)
	require.NotNil(t, mine.Orders[0].BankSlipURL)
	assert.Contains(t, *mine.Orders[0].BankSlipURL, "https://cdn.test/slips/")
}

func TestAdminOperations(t *testing.T) {
	env := setupTestEnv(t)
	buyer := uuid.New()
	buyerToken := mintToken(t, buyer, false)
	adminToken := mintToken(t, uuid.New(), true)

	placed := POST[placedResponse](t, env.server.URL, "/api/order/place", buyerToken, orderPayload(), http.StatusOK)

	t.Run("buyer cannot use admin surface", func(t *testing.T) {
		GET[map[string]interface{}](t, env.server.URL, "/api/order/list", buyerToken, nil, http.StatusForbidden)
	})

	t.Run("admin lists and filters orders", func(t *testing.T) {
		list := GET[ordersResponse](t, env.server.URL, "/api/order/list", adminToken, listQuery{Method: "cod"}, http.StatusOK)
		require.Len(t, list.Orders, 1)
		assert.Equal(t, placed.OrderID, list.Orders[0].ID)

		empty := GET[ordersResponse](t, env.server.URL, "/api/order/list", adminToken, listQuery{Method: "bankSlip"}, http.StatusOK)
		assert.Empty(t, empty.Orders)
	})

	t.Run("status update to Paid flips the payment flag", func(t *testing.T) {
		body := map[string]string{"orderId": placed.OrderID, "status": "Paid"}
		POST[map[string]interface{}](t, env.server.URL, "/api/order/status", adminToken, body, http.StatusOK)

		mine := POST[ordersResponse](t, env.server.URL, "/api/order/userorders", buyerToken, nil, http.StatusOK)
		require.Len(t, mine.Orders, 1)
		assert.True(t, mine.Orders[0].Payment)
	})

	t.Run("audit trail records the lifecycle", func(t *testing.T) {
		events := GET[[]order.Event](t, env.server.URL, "/api/order/"+placed.OrderID+"/events", adminToken, nil, http.StatusOK)
		require.NotEmpty(t, events)

		kinds := make(map[order.EventKind]bool)
		for _, e := range events {
			kinds[e.Kind] = true
		}
		assert.True(t, kinds[order.EventPlaced])
		assert.True(t, kinds[order.EventStatusChanged])
	})

	t.Run("delete is idempotent and keeps the trail", func(t *testing.T) {
		DELETE(t, env.server.URL, "/api/order/"+placed.OrderID, adminToken, http.StatusOK)
		DELETE(t, env.server.URL, "/api/order/"+placed.OrderID, adminToken, http.StatusOK)

		events := GET[[]order.Event](t, env.server.URL, "/api/order/"+placed.OrderID+"/events", adminToken, nil, http.StatusOK)
		assert.NotEmpty(t, events)
	})
}

func TestDeliveryAddressBook(t *testing.T) {
	env := setupTestEnv(t)
	user := uuid.New()
	token := mintToken(t, user, false)

	fields := map[string]string{
		"firstName": "Ada", "lastName": "Byron", "email": "ada@example.com",
		"street": "1 King St", "city": "London", "state": "LDN",
		"zipcode": "E1", "country": "UK", "phone": "555-0101",
	}

	added := POST[deliveryResponse](t, env.server.URL, "/api/delivery", token, fields, http.StatusOK)
	require.NotEmpty(t, added.Delivery.ID)

	list := GET[deliveriesResponse](t, env.server.URL, "/api/delivery", token, nil, http.StatusOK)
	require.Len(t, list.Deliveries, 1)

	fields["city"] = "Cambridge"
	updated := PUT[deliveryResponse](t, env.server.URL, "/api/delivery/"+added.Delivery.ID, token, fields, http.StatusOK)
	assert.Equal(t, "Cambridge", updated.Delivery.City)

	t.Run("foreign records are off limits", func(t *testing.T) {
		stranger := mintToken(t, uuid.New(), false)
		PUT[map[string]interface{}](t, env.server.URL, "/api/delivery/"+added.Delivery.ID, stranger, fields, http.StatusForbidden)
	})

	DELETE(t, env.server.URL, "/api/delivery/"+added.Delivery.ID, token, http.StatusOK)
	empty := GET[deliveriesResponse](t, env.server.URL, "/api/delivery", token, nil, http.StatusOK)
	assert.Empty(t, empty.Deliveries)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := setupTestEnv(t)

	POST[map[string]interface{}](t, env.server.URL, "/api/order/place", "", orderPayload(), http.StatusUnauthorized)
	POST[map[string]interface{}](t, env.server.URL, "/api/order/place", "garbage-token", orderPayload(), http.StatusUnauthorized)
}

// Wire types shared with the handlers.

type placedResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type ordersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

type deliveryResponse struct {
	Success  bool          `json:"success"`
	Delivery delivery.Info `json:"delivery"`
}

type deliveriesResponse struct {
	Success    bool            `json:"success"`
	Deliveries []delivery.Info `json:"deliveries"`
}

type listQuery struct {
	Method    string `url:"method,omitempty"`
	Search    string `url:"search,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Page      int    `url:"page,omitempty"`
	SortBy    string `url:"sort_by,omitempty"`
	SortOrder string `url:"sort_order,omitempty"`
}

func GET[T any](t *testing.T, baseUrl, path, token string, queryPayload any, expectedStatus int) T {
	t.Helper()

	u, _ := url.Parse(baseUrl)
	u.Path = path
	if queryPayload != nil {
		v, err := query.Values(queryPayload)
		require.NoError(t, err)
		u.RawQuery = v.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	require.NoError(t, err)
	return do[T](t, req, token, expectedStatus)
}

func POST[T any](t *testing.T, baseUrl, path, token string, payload any, expectedStatus int) T {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonPayload)
	}

	req, err := http.NewRequest(http.MethodPost, baseUrl+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return do[T](t, req, token, expectedStatus)
}

func PUT[T any](t *testing.T, baseUrl, path, token string, payload any, expectedStatus int) T {
	t.Helper()

	jsonPayload, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, baseUrl+path, bytes.NewBuffer(jsonPayload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return do[T](t, req, token, expectedStatus)
}

func DELETE(t *testing.T, baseUrl, path, token string, expectedStatus int) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, baseUrl+path, nil)
	require.NoError(t, err)
	do[map[string]interface{}](t, req, token, expectedStatus)
}

func do[T any](t *testing.T, req *http.Request, token string, expectedStatus int) T {
	t.Helper()

	var res T
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, expectedStatus, resp.StatusCode)

	if resp.ContentLength != 0 {
		err = json.NewDecoder(resp.Body).Decode(&res)
		require.NoError(t, err)
	}
	return res
}

func postBankSlip(t *testing.T, baseUrl, token string, payload map[string]interface{}, slip []byte, expectedStatus int) placedResponse {
	t.Helper()

	body := bytes.NewBuffer(nil)
	writer := newMultipart(t, body, payload, slip)

	req, err := http.NewRequest(http.MethodPost, baseUrl+"/api/order/bankslip", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer)
	return do[placedResponse](t, req, token, expectedStatus)
}

// newMultipart writes the slip upload form and returns its content type.
func newMultipart(t *testing.T, buf *bytes.Buffer, payload map[string]interface{}, slip []byte) string {
	t.Helper()

	writer := multipart.NewWriter(buf)

	orderJSON, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("order", string(orderJSON)))

	part, err := writer.CreateFormFile("slip", "slip.png")
	require.NoError(t, err)
	_, err = part.Write(slip)
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return writer.FormDataContentType()
}
