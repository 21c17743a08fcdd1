package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/middleware"
	"github.com/Company-KERL/Kerl-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var sessionID = primitive.NewObjectID()

// newRouter returns an engine with the error middleware and, when session
// is non-empty, a stub authentication step.
func newRouter(session string) *gin.Engine {
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	if session != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserContextKey, session)
			c.Next()
		})
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// --- fake services ---

type fakeProductService struct {
	createFn  func(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	listFn    func(ctx context.Context) ([]models.Product, error)
	getFn     func(ctx context.Context, id string) (*models.Product, error)
	updateFn  func(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error)
	deleteFn  func(ctx context.Context, id string) error
	presignFn func(ctx context.Context, id string, req *models.PresignImageRequest) (*models.PresignedUpload, error)
}

func (f *fakeProductService) Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	return f.createFn(ctx, req)
}
func (f *fakeProductService) List(ctx context.Context) ([]models.Product, error) {
	return f.listFn(ctx)
}
func (f *fakeProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return f.getFn(ctx, id)
}
func (f *fakeProductService) Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	return f.updateFn(ctx, id, req)
}
func (f *fakeProductService) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}
func (f *fakeProductService) PresignImageUpload(ctx context.Context, id string, req *models.PresignImageRequest) (*models.PresignedUpload, error) {
	return f.presignFn(ctx, id, req)
}

type fakeCartService struct {
	addFn    func(ctx context.Context, userID primitive.ObjectID, req *models.AddCartItemRequest) (*models.Cart, error)
	removeFn func(ctx context.Context, userID primitive.ObjectID, productID string) (*models.Cart, error)
	updateFn func(ctx context.Context, userID primitive.ObjectID, req *models.UpdateCartItemRequest) (*models.Cart, error)
	getFn    func(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error)
	lengthFn func(ctx context.Context, userID primitive.ObjectID) (int, error)
	clearFn  func(ctx context.Context, userID primitive.ObjectID) error
}

func (f *fakeCartService) AddItem(ctx context.Context, userID primitive.ObjectID, req *models.AddCartItemRequest) (*models.Cart, error) {
	return f.addFn(ctx, userID, req)
}
func (f *fakeCartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, productID string) (*models.Cart, error) {
	return f.removeFn(ctx, userID, productID)
}
func (f *fakeCartService) UpdateItemQuantity(ctx context.Context, userID primitive.ObjectID, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	return f.updateFn(ctx, userID, req)
}
func (f *fakeCartService) GetItems(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	return f.getFn(ctx, userID)
}
func (f *fakeCartService) GetLength(ctx context.Context, userID primitive.ObjectID) (int, error) {
	return f.lengthFn(ctx, userID)
}
func (f *fakeCartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	return f.clearFn(ctx, userID)
}

type fakeOrderService struct {
	createFn    func(ctx context.Context, userID primitive.ObjectID, req *models.CreateOrderRequest, key string) (*models.Order, bool, error)
	listFn      func(ctx context.Context, userID primitive.ObjectID) ([]models.OrderView, error)
	statusFn    func(ctx context.Context, orderID, status string) (*models.Order, error)
	deleteFn    func(ctx context.Context, orderID string) error
	addressesFn func(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req *models.CreateOrderRequest, key string) (*models.Order, bool, error) {
	return f.createFn(ctx, userID, req, key)
}
func (f *fakeOrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.OrderView, error) {
	return f.listFn(ctx, userID)
}
func (f *fakeOrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	return f.statusFn(ctx, orderID, status)
}
func (f *fakeOrderService) DeleteOrder(ctx context.Context, orderID string) error {
	return f.deleteFn(ctx, orderID)
}
func (f *fakeOrderService) GetAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	return f.addressesFn(ctx, userID)
}

type fakePaymentService struct {
	createFn  func(ctx context.Context, userID primitive.ObjectID, req *models.CreatePaymentRequest) (*models.Payment, error)
	updateFn  func(ctx context.Context, userID primitive.ObjectID, req *models.UpdatePaymentRequest) (*models.Payment, *models.Order, error)
	getFn     func(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Payment, error)
	webhookFn func(ctx context.Context, payload []byte, signature string) error
}

func (f *fakePaymentService) CreatePayment(ctx context.Context, userID primitive.ObjectID, req *models.CreatePaymentRequest) (*models.Payment, error) {
	return f.createFn(ctx, userID, req)
}
func (f *fakePaymentService) UpdatePayment(ctx context.Context, userID primitive.ObjectID, req *models.UpdatePaymentRequest) (*models.Payment, *models.Order, error) {
	return f.updateFn(ctx, userID, req)
}
func (f *fakePaymentService) GetPayment(ctx context.Context, userID primitive.ObjectID, orderID string) (*models.Payment, error) {
	return f.getFn(ctx, userID, orderID)
}
func (f *fakePaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.webhookFn(ctx, payload, signature)
}
