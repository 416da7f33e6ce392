//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"aurum-commerce/internal/handler/api"
	reqdto "aurum-commerce/internal/handler/dto/request"
	resdto "aurum-commerce/internal/handler/dto/response"
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/tests/common/httptest"
	commandsmock "aurum-commerce/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockCmds    *commandsmock.MockCheckoutCommands
	currentUser uuid.UUID
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCmds = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.currentUser = uuid.New()
	handler := api.NewCheckoutHandler(s.mockCmds)

	s.router.POST("/checkout", func(c *gin.Context) {
		// Mock middleware behavior
		c.Set("user_id", s.currentUser)
		handler.Checkout(c)
	})
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func checkoutBody() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		ShippingAddress: reqdto.AddressRequest{
			Name:       "Asha Verma",
			Line1:      "14 Marine Drive",
			City:       "Mumbai",
			State:      "Maharashtra",
			PostalCode: "400001",
			Country:    "India",
			Phone:      "+91-9800000000",
		},
		PaymentMethod: "gateway",
	}
}

func (s *CheckoutHandlerTestSuite) TestCheckout() {
	url := "/checkout"
	reqBody := checkoutBody()

	s.Run("success: returns 201 Created with the order", func() {
		orderID := uuid.New()
		s.mockCmds.EXPECT().Checkout(gomock.Any(), s.currentUser, reqBody.ToCommand()).
			Return(&commands.CheckoutResult{
				OrderID:         orderID,
				OrderNumber:     "ORD-20260801-0001",
				Total:           52000,
				PaymentRequired: true,
			}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(orderID, response.OrderID)
	})

	s.Run("error: 404 for an empty cart", func() {
		s.mockCmds.EXPECT().Checkout(gomock.Any(), s.currentUser, reqBody.ToCommand()).
			Return(nil, commands.ErrEmptyCart).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Cart is empty")
	})

	s.Run("error: 409 on a stock conflict", func() {
		s.mockCmds.EXPECT().Checkout(gomock.Any(), s.currentUser, reqBody.ToCommand()).
			Return(nil, commands.ErrStockConflict).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Insufficient stock")
	})

	s.Run("error: 422 for a stale discount", func() {
		s.mockCmds.EXPECT().Checkout(gomock.Any(), s.currentUser, reqBody.ToCommand()).
			Return(nil, commands.ErrDiscountNoLongerValid).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "")
	})

	s.Run("error: 500 when stock compensation failed", func() {
		s.mockCmds.EXPECT().Checkout(gomock.Any(), s.currentUser, reqBody.ToCommand()).
			Return(nil, commands.ErrInternalInconsistency).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Checkout could not be completed")
	})

	s.Run("error: 400 for an unknown payment method", func() {
		bad := checkoutBody()
		bad.PaymentMethod = "barter"
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, bad, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}
