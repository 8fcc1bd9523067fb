package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/tylerheal/clientportal/internal/models"
	"github.com/tylerheal/clientportal/internal/settings"
)

// CheckoutSession is the provider-hosted payment page reference returned to
// the client. A nil CheckoutURL means no session could be created — missing
// credentials or a provider failure — and is a successful, degraded answer.
type CheckoutSession struct {
	CheckoutURL *string `json:"checkout_url"`
	ExternalID  string  `json:"external_id,omitempty"`
	Provider    string  `json:"provider,omitempty"`
}

// paypalBase is swapped out in tests.
var paypalBase = "https://api-m.paypal.com"

// httpClient bounds provider calls so an outage cannot stall the serving
// goroutine indefinitely.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// currencyCode maps the stored currency to an ISO code; single-character
// values are display symbols, not codes.
func currencyCode(currency string) string {
	if len(currency) > 1 {
		return currency
	}
	return "USD"
}

// CreateSession creates a provider checkout session for the order. Provider
// failures never propagate: the caller always gets a usable (possibly
// degraded) result.
func CreateSession(order *models.Order, serviceName string) CheckoutSession {
	billing := settings.Section(settings.SectionBilling)

	provider := settings.Str(billing, "provider", "stripe")
	switch provider {
	case "paypal":
		return createPayPalSession(order, serviceName, billing)
	default:
		return createStripeSession(order, serviceName, billing)
	}
}

func createStripeSession(order *models.Order, serviceName string, billing map[string]interface{}) CheckoutSession {
	secret := settings.Str(billing, "stripe_secret_key", "")
	if secret == "" {
		return CheckoutSession{}
	}

	stripe.Key = secret
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(settings.Str(billing, "success_url", "https://example.com/success")),
		CancelURL:          stripe.String(settings.Str(billing, "cancel_url", "https://example.com/cancel")),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(currencyCode(order.Currency))),
				UnitAmount: stripe.Int64(int64(math.Round(order.TotalAmount * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(serviceName),
				},
			},
		}},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("payments: stripe checkout failed")
		return CheckoutSession{}
	}
	return CheckoutSession{CheckoutURL: &sess.URL, ExternalID: sess.ID, Provider: "stripe"}
}

func createPayPalSession(order *models.Order, serviceName string, billing map[string]interface{}) CheckoutSession {
	clientID := settings.Str(billing, "paypal_client_id", "")
	clientSecret := settings.Str(billing, "paypal_client_secret", "")
	if clientID == "" || clientSecret == "" {
		return CheckoutSession{}
	}

	token, err := paypalAccessToken(clientID, clientSecret)
	if err != nil {
		logrus.WithError(err).Error("payments: paypal auth failed")
		return CheckoutSession{}
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"amount": map[string]string{
				"currency_code": currencyCode(order.Currency),
				"value":         fmt.Sprintf("%.2f", order.TotalAmount),
			},
			"description": serviceName,
		}},
		"application_context": map[string]string{
			"return_url": settings.Str(billing, "success_url", "https://example.com/success"),
			"cancel_url": settings.Str(billing, "cancel_url", "https://example.com/cancel"),
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, paypalBase+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		logrus.WithError(err).Error("payments: paypal request build failed")
		return CheckoutSession{}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("payments: paypal order failed")
		return CheckoutSession{}
	}
	defer resp.Body.Close()

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logrus.WithError(err).Error("payments: paypal response decode failed")
		return CheckoutSession{}
	}

	for _, link := range result.Links {
		if link.Rel == "approve" {
			href := link.Href
			return CheckoutSession{CheckoutURL: &href, ExternalID: result.ID, Provider: "paypal"}
		}
	}
	return CheckoutSession{}
}

func paypalAccessToken(clientID, clientSecret string) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequest(http.MethodPost, paypalBase+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token exchange: %s", resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("paypal token exchange: empty token")
	}
	return payload.AccessToken, nil
}
