package payment

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// callbackServer is the loopback HTTP listener that captures the hosted
// checkout's redirect. The gateway posts either the success triplet or
// an error description back to the callback URL.
type callbackServer struct {
	addr   string
	logger *zap.Logger

	mu      sync.Mutex
	waiters map[string]chan Result
	srv     *http.Server
	started bool
}

func newCallbackServer(addr string, logger *zap.Logger) *callbackServer {
	return &callbackServer{
		addr:    addr,
		logger:  logger,
		waiters: make(map[string]chan Result),
	}
}

// start brings the listener up at most once; later calls are no-ops.
// Binding happens synchronously so an unusable address fails here
// rather than leaving payment attempts waiting on a callback that can
// never arrive.
func (cs *callbackServer) start() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.started {
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.POST("/payment/callback/:orderID", cs.handleCallback)
	router.GET("/payment/callback/:orderID", cs.handleCallback)

	ln, err := net.Listen("tcp", cs.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cs.addr, err)
	}

	cs.srv = &http.Server{Handler: router}
	cs.started = true

	go func() {
		if err := cs.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			cs.logger.Error("payment callback server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (cs *callbackServer) handleCallback(c *gin.Context) {
	orderID := c.Param("orderID")

	result := Result{Status: StatusSuccess, Payment: SuccessPayload{
		OrderID:   c.DefaultPostForm("razorpay_order_id", c.Query("razorpay_order_id")),
		PaymentID: c.DefaultPostForm("razorpay_payment_id", c.Query("razorpay_payment_id")),
		Signature: c.DefaultPostForm("razorpay_signature", c.Query("razorpay_signature")),
	}}

	// A failed attempt redirects with error fields instead of the triplet.
	if desc := c.DefaultPostForm("error[description]", c.Query("error[description]")); desc != "" {
		result = Result{Status: StatusFailure, Reason: desc}
	} else if result.Payment.PaymentID == "" {
		result = Result{Status: StatusFailure, Reason: "payment failed"}
	}

	cs.mu.Lock()
	ch, ok := cs.waiters[orderID]
	cs.mu.Unlock()
	if !ok {
		cs.logger.Warn("callback for unknown order", zap.String("order_id", orderID))
		c.String(http.StatusGone, "This payment attempt is no longer active.")
		return
	}

	select {
	case ch <- result:
	default:
		// Duplicate redirect for an already-resolved attempt.
	}

	if result.Status == StatusSuccess {
		c.String(http.StatusOK, "Payment received. You can return to the app.")
	} else {
		c.String(http.StatusOK, "Payment was not completed. You can return to the app.")
	}
}

// register creates the result channel for an order's payment attempt.
func (cs *callbackServer) register(orderID string) chan Result {
	ch := make(chan Result, 1)
	cs.mu.Lock()
	cs.waiters[orderID] = ch
	cs.mu.Unlock()
	return ch
}

// unregister tears down the order's waiter.
func (cs *callbackServer) unregister(orderID string) {
	cs.mu.Lock()
	delete(cs.waiters, orderID)
	cs.mu.Unlock()
}
