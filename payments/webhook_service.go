package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	config "github.com/toofuturetechnologies/SummitSite-sub001/configs"
)

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhookSignature asks the processor to confirm a webhook delivery
// really came from it. Events that fail verification are dropped.
func VerifyWebhookSignature(headers map[string]string, rawEvent []byte) (bool, error) {
	accessToken, err := GetAccessToken()
	if err != nil {
		return false, err
	}

	apiBase := config.Config("PAYPAL_API_BASE_URL")
	webhookID := config.Config("PAYPAL_WEBHOOK_ID")

	payload := map[string]interface{}{
		"auth_algo":         headers["Paypal-Auth-Algo"],
		"cert_url":          headers["Paypal-Cert-Url"],
		"transmission_id":   headers["Paypal-Transmission-Id"],
		"transmission_sig":  headers["Paypal-Transmission-Sig"],
		"transmission_time": headers["Paypal-Transmission-Time"],
		"webhook_id":        webhookID,
		"webhook_event":     json.RawMessage(rawEvent),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/notifications/verify-webhook-signature", apiBase), bytes.NewBuffer(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("verification call failed, status: %s", resp.Status)
	}

	var verification verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return false, err
	}

	return verification.VerificationStatus == "SUCCESS", nil
}
