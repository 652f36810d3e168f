package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	config "github.com/toofuturetechnologies/SummitSite-sub001/configs"
)

type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// centsToValue formats a minor-unit amount the way the processor expects,
// e.g. 43150 -> "431.50".
func centsToValue(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}

// CreateOrder opens a processor order for the given minor-unit amount.
func CreateOrder(amount int64, currency string) (*Order, error) {
	accessToken, err := GetAccessToken()
	if err != nil {
		return nil, err
	}

	apiBase := config.Config("PAYPAL_API_BASE_URL")

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         centsToValue(amount),
				},
			},
		},
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/v2/checkout/orders", apiBase), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create order: %s", string(respBody))
	}

	var order Order
	json.NewDecoder(resp.Body).Decode(&order)
	return &order, nil
}

// CaptureOrder captures a previously approved order.
func CaptureOrder(orderID string) (*Order, error) {
	accessToken, err := GetAccessToken()
	if err != nil {
		return nil, err
	}

	apiBase := config.Config("PAYPAL_API_BASE_URL")

	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/v2/checkout/orders/%s/capture", apiBase, orderID), nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to capture order: %s", string(respBody))
	}

	var order Order
	json.NewDecoder(resp.Body).Decode(&order)
	return &order, nil
}

// RefundCapture asks the processor to refund part or all of a captured
// payment. The refund lands asynchronously; the refund webhook confirms it.
func RefundCapture(captureID string, amount int64, currency string) (*Refund, error) {
	accessToken, err := GetAccessToken()
	if err != nil {
		return nil, err
	}

	apiBase := config.Config("PAYPAL_API_BASE_URL")

	payload := map[string]interface{}{
		"amount": map[string]string{
			"currency_code": currency,
			"value":         centsToValue(amount),
		},
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/v2/payments/captures/%s/refund", apiBase, captureID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to refund capture: %s", string(respBody))
	}

	var refund Refund
	json.NewDecoder(resp.Body).Decode(&refund)
	return &refund, nil
}
