package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexusmarket/backend/internal/payments"
)

type fakeCoordinator struct {
	handled   []string
	handleErr error
}

func (f *fakeCoordinator) OpenSession(context.Context, string, string, string) (*payments.OpenSessionResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeCoordinator) ConfirmPayment(context.Context, string) (*payments.ConfirmResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeCoordinator) HandleCompletedSession(_ context.Context, sessionID string) error {
	f.handled = append(f.handled, sessionID)
	return f.handleErr
}

func postWebhook(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/payment", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func assertAck(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding ack: %v", err)
	}
	if !body["received"] {
		t.Fatalf("expected received:true, got %v", body)
	}
}

func TestPaymentWebhookSettlesSession(t *testing.T) {
	coord := &fakeCoordinator{}
	handler := PaymentWebhook(coord, nil)

	resp := postWebhook(handler, `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_123"}}}`)
	assertAck(t, resp)

	if len(coord.handled) != 1 || coord.handled[0] != "cs_test_123" {
		t.Fatalf("expected one settlement for cs_test_123, got %v", coord.handled)
	}
}

func TestPaymentWebhookIgnoresOtherEventTypes(t *testing.T) {
	coord := &fakeCoordinator{}
	handler := PaymentWebhook(coord, nil)

	assertAck(t, postWebhook(handler, `{"type":"checkout.session.expired","data":{"object":{"id":"cs_expired_1"}}}`))
	assertAck(t, postWebhook(handler, `{"type":"payment_intent.created","data":{"object":{"id":"cs_open_2"}}}`))

	if len(coord.handled) != 0 {
		t.Fatalf("only completed sessions may settle, got %v", coord.handled)
	}
}

func TestPaymentWebhookAcksMalformedBody(t *testing.T) {
	coord := &fakeCoordinator{}
	handler := PaymentWebhook(coord, nil)

	assertAck(t, postWebhook(handler, `not json`))
	if len(coord.handled) != 0 {
		t.Fatalf("malformed payload must not reach the coordinator, got %v", coord.handled)
	}
}

func TestPaymentWebhookAcksMissingSessionID(t *testing.T) {
	coord := &fakeCoordinator{}
	handler := PaymentWebhook(coord, nil)

	assertAck(t, postWebhook(handler, `{"type":"checkout.session.completed","data":{"object":{}}}`))
	if len(coord.handled) != 0 {
		t.Fatalf("missing session id must not reach the coordinator, got %v", coord.handled)
	}
}

func TestPaymentWebhookAcksSettlementFailure(t *testing.T) {
	coord := &fakeCoordinator{handleErr: errors.New("db down")}
	handler := PaymentWebhook(coord, nil)

	assertAck(t, postWebhook(handler, `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_456"}}}`))
}

func TestPaymentWebhookAcksWithoutCoordinator(t *testing.T) {
	handler := PaymentWebhook(nil, nil)
	assertAck(t, postWebhook(handler, `{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_789"}}}`))
}
