package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/tillworks/tillpos/internal/auth/domain"
	authrepo "github.com/tillworks/tillpos/internal/auth/repository"
	authservice "github.com/tillworks/tillpos/internal/auth/service"
	"github.com/tillworks/tillpos/internal/auth/token"
	"github.com/tillworks/tillpos/internal/authz"
	"github.com/tillworks/tillpos/internal/config"
	paymentdomain "github.com/tillworks/tillpos/internal/payment/domain"
	"github.com/tillworks/tillpos/internal/payment/gateway/paystack"
	paymentrepo "github.com/tillworks/tillpos/internal/payment/repository"
	paymentservice "github.com/tillworks/tillpos/internal/payment/service"
	productdomain "github.com/tillworks/tillpos/internal/product/domain"
	productrepo "github.com/tillworks/tillpos/internal/product/repository"
	productservice "github.com/tillworks/tillpos/internal/product/service"
	"github.com/tillworks/tillpos/internal/providers/pdf"
	saledomain "github.com/tillworks/tillpos/internal/sale/domain"
	salerepo "github.com/tillworks/tillpos/internal/sale/repository"
	saleservice "github.com/tillworks/tillpos/internal/sale/service"
	subscriptiondomain "github.com/tillworks/tillpos/internal/subscription/domain"
	subscriptionrepo "github.com/tillworks/tillpos/internal/subscription/repository"
	subscriptionservice "github.com/tillworks/tillpos/internal/subscription/service"
	tenantdomain "github.com/tillworks/tillpos/internal/tenant/domain"
	tenantrepo "github.com/tillworks/tillpos/internal/tenant/repository"
	tenantservice "github.com/tillworks/tillpos/internal/tenant/service"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const webhookTestSecret = "whsec-server-test"

type testServer struct {
	engine *gin.Engine
	conn   *gorm.DB
	node   *snowflake.Node
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tenantdomain.Tenant{}, &authdomain.User{},
		&productdomain.Product{},
		&saledomain.Sale{}, &saledomain.SaleItem{},
		&subscriptiondomain.Subscription{},
		&paymentdomain.EventRecord{}, &paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	issuer, err := token.NewIssuer("server-test-secret", time.Hour)
	require.NoError(t, err)
	gate, err := authz.NewGate(zap.NewNop())
	require.NoError(t, err)
	gateway, err := paystack.New(webhookTestSecret)
	require.NoError(t, err)

	log := zap.NewNop()
	tenantRepo := tenantrepo.Provide()
	authRepo := authrepo.Provide()
	productRepo := productrepo.Provide()
	subRepo := subscriptionrepo.Provide()
	holder := config.NewStaticPOSConfigHolder(config.POSConfig{
		DefaultTaxRate: 0.10,
		Currency:       "USD",
		ReceiptFooter:  "Thanks for shopping",
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:   engine,
		Cfg:   config.Config{},
		DB:    conn,
		GenID: node,
		Gate:  gate,
		AuthSvc: authservice.NewService(authservice.Params{
			DB: conn, Log: log, GenID: node, Issuer: issuer,
			Repo: authRepo, TenantRepo: tenantRepo,
		}),
		TenantSvc: tenantservice.NewService(tenantservice.Params{
			DB: conn, Log: log, Repo: tenantRepo,
		}),
		ProductSvc: productservice.NewService(productservice.Params{
			DB: conn, Log: log, GenID: node, Repo: productRepo,
		}),
		SaleSvc: saleservice.NewService(saleservice.Params{
			DB: conn, Log: log, GenID: node,
			Repo: salerepo.Provide(), ProductRepo: productRepo,
			POSConfig: holder,
		}),
		SubscriptionSvc: subscriptionservice.NewService(subscriptionservice.Params{
			DB: conn, Log: log, GenID: node, Repo: subRepo,
		}),
		PaymentSvc: paymentservice.NewService(paymentservice.Params{
			DB: conn, Log: log, GenID: node,
			Repo: paymentrepo.Provide(), SubRepo: subRepo, Gateway: gateway,
		}),
		PDFProvider: pdf.NewProvider(),
		POSConfig:   holder,
	})

	return &testServer{engine: engine, conn: conn, node: node}
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	ts.engine.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (ts *testServer) signup(t *testing.T, business, email, password string) {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/v1/signup", "", gin.H{
		"business_name": business,
		"email":         email,
		"password":      password,
		"display_name":  "Owner",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func (ts *testServer) login(t *testing.T, tenantSlug, email, password string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{
		"tenant":   tenantSlug,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var result struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &result)
	require.NotEmpty(t, result.Token)
	return result.Token
}

func (ts *testServer) createProduct(t *testing.T, bearer, name string, price float64, stock int) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/v1/products", bearer, gin.H{
		"name":           name,
		"price":          price,
		"stock_quantity": stock,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var product struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &product)
	return product.ID
}

func (ts *testServer) createSale(t *testing.T, bearer, productID string, qty int) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/v1/sales", bearer, gin.H{
		"items": []gin.H{{"product_id": productID, "quantity": qty}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var sale struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &sale)
	return sale.ID
}

func TestSignupLoginAndCatalog(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")

	productID := ts.createProduct(t, bearer, "Espresso", 3.50, 20)

	resp := ts.do(t, http.MethodGet, "/v1/products/"+productID, bearer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var product struct {
		Name          string  `json:"name"`
		Price         float64 `json:"price"`
		StockQuantity int     `json:"stock_quantity"`
	}
	decodeData(t, resp, &product)
	assert.Equal(t, "Espresso", product.Name)
	assert.Equal(t, 3.50, product.Price)
	assert.Equal(t, 20, product.StockQuantity)

	resp = ts.do(t, http.MethodGet, "/v1/products", bearer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listing []json.RawMessage
	decodeData(t, resp, &listing)
	assert.Len(t, listing, 1)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.do(t, http.MethodGet, "/v1/products", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestTenantIsolation(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Store A", "a@stores.test", "password-a")
	ts.signup(t, "Store B", "b@stores.test", "password-b")
	bearerA := ts.login(t, "store-a", "a@stores.test", "password-a")
	bearerB := ts.login(t, "store-b", "b@stores.test", "password-b")

	productID := ts.createProduct(t, bearerA, "Latte", 4.00, 5)

	// The other tenant sees neither the product nor any hint it exists.
	resp := ts.do(t, http.MethodGet, "/v1/products/"+productID, bearerB, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.do(t, http.MethodGet, "/v1/products", bearerB, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var listing []json.RawMessage
	decodeData(t, resp, &listing)
	assert.Empty(t, listing)

	saleID := ts.createSale(t, bearerA, productID, 1)
	resp = ts.do(t, http.MethodPost, "/v1/sales/"+saleID+"/refund", bearerB, gin.H{"reason": "not mine"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCashierPermissions(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	adminBearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")

	resp := ts.do(t, http.MethodPost, "/v1/users", adminBearer, gin.H{
		"email":        "till@deli.test",
		"password":     "cashier-pass",
		"display_name": "Till One",
		"role":         "cashier",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	cashierBearer := ts.login(t, "corner-deli", "till@deli.test", "cashier-pass")
	productID := ts.createProduct(t, adminBearer, "Bagel", 2.25, 10)

	// A cashier rings up sales but cannot reverse them or touch the catalog.
	saleID := ts.createSale(t, cashierBearer, productID, 2)

	resp = ts.do(t, http.MethodPost, "/v1/sales/"+saleID+"/refund", cashierBearer, gin.H{"reason": "change of mind"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.do(t, http.MethodPost, "/v1/products", cashierBearer, gin.H{"name": "Nope", "price": 1.0})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.do(t, http.MethodPost, "/v1/sales/"+saleID+"/refund", adminBearer, gin.H{"reason": "change of mind"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestSaleStockShortfall(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")
	productID := ts.createProduct(t, bearer, "Muffin", 2.75, 1)

	resp := ts.do(t, http.MethodPost, "/v1/sales", bearer, gin.H{
		"items": []gin.H{{"product_id": productID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "insufficient_stock")

	// The failed sale must not have burned the remaining unit.
	ts.createSale(t, bearer, productID, 1)
}

func TestDoubleRefundRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")
	productID := ts.createProduct(t, bearer, "Scone", 3.00, 4)
	saleID := ts.createSale(t, bearer, productID, 2)

	resp := ts.do(t, http.MethodPost, "/v1/sales/"+saleID+"/refund", bearer, gin.H{"reason": "stale"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.do(t, http.MethodPost, "/v1/sales/"+saleID+"/refund", bearer, gin.H{"reason": "stale"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "already_refunded")
}

func TestReceiptDownload(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")
	productID := ts.createProduct(t, bearer, "Espresso", 3.50, 20)
	saleID := ts.createSale(t, bearer, productID, 2)

	resp := ts.do(t, http.MethodGet, "/v1/sales/"+saleID+"/receipt", bearer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")))
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookReplayAcknowledged(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")

	resp := ts.do(t, http.MethodPost, "/v1/subscription/upgrade", bearer, gin.H{"plan": "standard"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var sub struct {
		GatewayRef string `json:"gateway_ref"`
	}
	decodeData(t, resp, &sub)
	require.NotEmpty(t, sub.GatewayRef)

	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"amount":250000,"currency":"USD","paid_at":"2026-08-01T10:00:00Z"}}`, sub.GatewayRef))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/paystack", bytes.NewReader(body))
		req.Header.Set(paystack.SignatureHeader, signWebhook(body))
		rec := httptest.NewRecorder()
		ts.engine.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Contains(t, first.Body.String(), "applied")

	second := post()
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")

	resp = ts.do(t, http.MethodGet, "/v1/subscription", bearer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"active"`)
}

func TestWebhookBadSignature(t *testing.T) {
	ts := newTestServer(t)

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":1000}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set(paystack.SignatureHeader, "deadbeef")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuperAdminScoping(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Corner Deli", "owner@deli.test", "sup3rsecret")
	bearer := ts.login(t, "corner-deli", "owner@deli.test", "sup3rsecret")

	hash, err := bcrypt.GenerateFromPassword([]byte("root-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, ts.conn.Create(&authdomain.User{
		ID:           ts.node.Generate(),
		TenantID:     0,
		ExternalID:   "root",
		Email:        "root@tillpos.test",
		PasswordHash: string(hash),
		Role:         authz.RoleSuperAdmin,
		Status:       authdomain.UserStatusActive,
	}).Error)

	rootBearer := ts.login(t, "", "root@tillpos.test", "root-password")

	// Tenant listing is super admin only.
	resp := ts.do(t, http.MethodGet, "/v1/admin/tenants", rootBearer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "corner-deli")

	resp = ts.do(t, http.MethodGet, "/v1/admin/tenants", bearer, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Store data needs a pinned tenant; the header supplies one.
	resp = ts.do(t, http.MethodGet, "/v1/products", rootBearer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var tenants []struct {
		ID string `json:"id"`
	}
	listResp := ts.do(t, http.MethodGet, "/v1/admin/tenants", rootBearer, nil)
	decodeData(t, listResp, &tenants)
	require.Len(t, tenants, 1)

	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+rootBearer)
	req.Header.Set(HeaderTenant, tenants[0].ID)
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
