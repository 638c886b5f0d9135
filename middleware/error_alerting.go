package middleware

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

type AlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
}

// ErrorAlertMiddleware turns panics and errors from event handlers,
// background tasks, and HTTP handlers into logged (and optionally
// webhook-alerted) no-ops. Nothing it wraps may crash the process.
type ErrorAlertMiddleware struct {
	config        AlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.RWMutex
	alertCooldown time.Duration // prevent spam
}

func NewErrorAlertMiddleware(config AlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // Don't alert same error more than once per 10min
	}
}

// HTTPMiddleware wraps HTTP handlers
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer m.recoverAndAlert(fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// WrapEventHandler guards one platform event dispatch. A panic or a
// returned error becomes a logged no-op so the event loop keeps running.
func (m *ErrorAlertMiddleware) WrapEventHandler(name string, handler func() error) {
	defer m.recoverAndAlert(fmt.Sprintf("Event handler: %s", name))

	if err := handler(); err != nil {
		log.Printf("❌ Event handler %s failed: %v", name, err)
		m.alertOnError(err, fmt.Sprintf("Event handler: %s", name))
	}
}

// WrapBackgroundTask guards a periodic task
func (m *ErrorAlertMiddleware) WrapBackgroundTask(taskName string, task func() error) func() error {
	return func() error {
		defer m.recoverAndAlert(fmt.Sprintf("Background task: %s", taskName))

		if err := task(); err != nil {
			m.alertOnError(err, fmt.Sprintf("Background task: %s", taskName))
			return err
		}
		return nil
	}
}

// Core error alerting logic
func (m *ErrorAlertMiddleware) alertOnError(err error, context string) {
	errorMsg := fmt.Sprintf("%s: %v", context, err)

	// Create hash of error for deduplication
	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Check if we've alerted for this error recently
	if lastAlert, exists := m.alertedErrors[hash]; exists {
		if time.Since(lastAlert) < m.alertCooldown {
			return // Skip alert - too recent
		}
	}

	// Send alert asynchronously
	go m.sendWebhookAlert(errorMsg, context)
	m.alertedErrors[hash] = time.Now()
}

func (m *ErrorAlertMiddleware) recoverAndAlert(context string) {
	if r := recover(); r != nil {
		errorMsg := fmt.Sprintf("%s: PANIC - %v", context, r)
		log.Printf("❌ %s", errorMsg)
		go m.sendWebhookAlert(errorMsg, context+" (PANIC)")
	}
}

func (m *ErrorAlertMiddleware) sendWebhookAlert(errorMsg, context string) {
	if m.config.WebhookURL == "" {
		return // Webhook alerts disabled
	}

	payload := map[string]any{
		"app":         m.config.AppName,
		"environment": m.config.Environment,
		"context":     context,
		"error":       errorMsg,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	payloadBytes, _ := json.Marshal(payload)

	resp, err := http.Post(m.config.WebhookURL, "application/json",
		strings.NewReader(string(payloadBytes)))
	if err != nil {
		log.Printf("❌ Failed to send webhook alert: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("❌ Webhook alert failed with status: %d", resp.StatusCode)
	}
}
