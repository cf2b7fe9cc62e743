// Command sender signs a webhook payload with the shared secret and posts
// it to a running inbox, for manual testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hakan-sariman/webhook-inbox/internal/model"
	"github.com/hakan-sariman/webhook-inbox/internal/signature"
)

func main() {
	url := flag.String("url", "http://localhost:8080/webhook", "webhook endpoint")
	secret := flag.String("secret", os.Getenv("WEBHOOK_SECRET"), "shared signing secret")
	from := flag.String("from", "+919876543210", "sender msisdn")
	to := flag.String("to", "+14155550100", "recipient msisdn")
	text := flag.String("text", "hello from sender", "message text")
	id := flag.String("id", "", "message id (random when empty)")
	flag.Parse()

	if *secret == "" {
		log.Fatal("secret required (flag -secret or WEBHOOK_SECRET)")
	}

	messageID := *id
	if messageID == "" {
		messageID = uuid.New().String()
	}
	payload := model.WebhookPayload{
		MessageID: messageID,
		From:      *from,
		To:        *to,
		TS:        time.Now().UTC().Format(model.CreatedAtLayout),
		Text:      *text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", signature.Compute(*secret, body))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post webhook: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	fmt.Printf("%s %d %v\n", messageID, resp.StatusCode, out)
}
