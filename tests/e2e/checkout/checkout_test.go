//go:build e2e

package checkout_test

import (
	"net/http"
	"testing"

	"aurum-commerce/internal/domain/user"
	"aurum-commerce/internal/handler/dto/request"
	"aurum-commerce/internal/handler/dto/response"
	"aurum-commerce/tests/common/authtest"
	"aurum-commerce/tests/common/dbtest"
	"aurum-commerce/tests/common/httptest"
	"aurum-commerce/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	cartURL          = "/api/cart"
	cartItemsURL     = "/api/cart/items"
	cartDiscountsURL = "/api/cart/discounts"
	checkoutURL      = "/api/checkout"
	ordersURL        = "/api/orders"
)

type CheckoutSuite struct {
	e2e.SharedSuite
}

func (s *CheckoutSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestCheckoutSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CheckoutSuite))
}

func shippingAddress() request.AddressRequest {
	return request.AddressRequest{
		Name:       "Asha Verma",
		Line1:      "12 Marine Drive",
		City:       "Mumbai",
		State:      "MH",
		PostalCode: "400001",
		Country:    "IN",
		Phone:      "+91-9800000000",
	}
}

func (s *CheckoutSuite) addToCart(t *testing.T, token, sku string, quantity int32) response.CartResponse {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartItemsURL,
		request.AddCartItemRequest{SKU: sku, Quantity: quantity}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cart response.CartResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &cart))
	return cart
}

func (s *CheckoutSuite) TestCartLifecycle() {
	s.Run("adding the same SKU twice merges the line", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "shopper@example.com", string(user.RoleCustomer))

		s.addToCart(t, token, "RING-18K-DIA-001", 1)
		cart := s.addToCart(t, token, "RING-18K-DIA-001", 2)

		require.Len(t, cart.Items, 1)
		require.Equal(t, int32(3), cart.Items[0].Quantity)
		require.Equal(t, int64(52000*3), cart.Subtotal)
	})

	s.Run("applying a coupon adjusts the total", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "shopper@example.com", string(user.RoleCustomer))
		dbtest.CreateTestCoupon(t, s.DB, "SAVE2000", 2000)

		s.addToCart(t, token, "RING-18K-DIA-001", 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartDiscountsURL,
			request.ApplyDiscountRequest{Kind: "coupon", Code: "SAVE2000"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var cart response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &cart))
		require.Equal(t, int64(2000), cart.CouponAmount)
		require.Equal(t, int64(50000), cart.Total)
	})

	s.Run("applying the same slot twice conflicts", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "shopper@example.com", string(user.RoleCustomer))
		dbtest.CreateTestCoupon(t, s.DB, "SAVE2000", 2000)
		dbtest.CreateTestCoupon(t, s.DB, "SAVE500", 500)

		s.addToCart(t, token, "RING-18K-DIA-001", 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartDiscountsURL,
			request.ApplyDiscountRequest{Kind: "coupon", Code: "SAVE2000"}, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, cartDiscountsURL,
			request.ApplyDiscountRequest{Kind: "coupon", Code: "SAVE500"}, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func (s *CheckoutSuite) TestCheckout() {
	s.Run("cart converts into a pending order", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "buyer@example.com", string(user.RoleCustomer))

		s.addToCart(t, token, "RING-18K-DIA-001", 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			request.CheckoutRequest{ShippingAddress: shippingAddress(), PaymentMethod: "cod"}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &result))
		require.NotEmpty(t, result.OrderNumber)
		require.Equal(t, int64(52000), result.Total)
		require.False(t, result.PaymentRequired)

		// the cart is now empty
		cw := httptest.PerformRequest(t, s.Router, http.MethodGet, cartURL, nil, token)
		require.Equal(t, http.StatusOK, cw.Code)
		var cart response.CartResponse
		require.NoError(t, httptest.DecodeResponseBody(t, cw.Body, &cart))
		require.Empty(t, cart.Items)

		// stock moved from 25 to 24
		var stock int32
		err := s.DB.QueryRow(t.Context(),
			"SELECT stock FROM variants WHERE sku = 'RING-18K-DIA-001'").Scan(&stock)
		require.NoError(t, err)
		require.Equal(t, int32(24), stock)

		// the order is visible to its owner
		ow := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+result.OrderID.String(), nil, token)
		require.Equal(t, http.StatusOK, ow.Code)
		var ord response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, ow.Body, &ord))
		require.Equal(t, "pending", ord.Status)
		require.Equal(t, "cod", ord.PaymentMethod)
	})

	s.Run("checkout of an empty cart is rejected", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "buyer@example.com", string(user.RoleCustomer))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			request.CheckoutRequest{ShippingAddress: shippingAddress(), PaymentMethod: "cod"}, token)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	s.Run("insufficient stock conflicts", func() {
		t := s.T()
		token := authtest.CreateAndLogin(t, s.DB, s.Router, "buyer@example.com", string(user.RoleCustomer))
		dbtest.CreateTestVariant(t, s.DB, "BANGLE-22K-001", 30000, 1)

		s.addToCart(t, token, "BANGLE-22K-001", 2)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			request.CheckoutRequest{ShippingAddress: shippingAddress(), PaymentMethod: "cod"}, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func (s *CheckoutSuite) TestCODCollection() {
	s.Run("staff confirm collection and the order advances", func() {
		t := s.T()
		buyerToken := authtest.CreateAndLogin(t, s.DB, s.Router, "buyer@example.com", string(user.RoleCustomer))
		staffToken := authtest.CreateAndLogin(t, s.DB, s.Router, "staff@example.com", string(user.RoleStaff))

		s.addToCart(t, buyerToken, "RING-18K-DIA-001", 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, checkoutURL,
			request.CheckoutRequest{ShippingAddress: shippingAddress(), PaymentMethod: "cod"}, buyerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var result response.CheckoutResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &result))

		orderID := result.OrderID.String()

		// initiate records the pending collection and sends the order out
		iw := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+orderID+"/payment", nil, buyerToken)
		require.Equal(t, http.StatusOK, iw.Code, iw.Body.String())

		pw := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+orderID, nil, buyerToken)
		require.Equal(t, http.StatusOK, pw.Code)
		var outbound response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, pw.Body, &outbound))
		require.Equal(t, "processing", outbound.Status)

		// customers cannot confirm collection
		fw := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+orderID+"/payment/cod",
			request.ConfirmCODRequest{CollectedAmount: result.Total}, buyerToken)
		require.Equal(t, http.StatusForbidden, fw.Code, fw.Body.String())

		cw := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL+"/"+orderID+"/payment/cod",
			request.ConfirmCODRequest{CollectedAmount: result.Total}, staffToken)
		require.Equal(t, http.StatusNoContent, cw.Code, cw.Body.String())

		ow := httptest.PerformRequest(t, s.Router, http.MethodGet, ordersURL+"/"+orderID, nil, buyerToken)
		require.Equal(t, http.StatusOK, ow.Code)
		var ord response.OrderResponse
		require.NoError(t, httptest.DecodeResponseBody(t, ow.Body, &ord))
		require.Equal(t, "processing", ord.Status)
		require.NotNil(t, ord.EstimatedETA)
	})
}
