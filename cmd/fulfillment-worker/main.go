package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

// courierEvent is the payload delivered by the courier partner's webhook.
// Event names follow the courier's vocabulary, not ours.
type courierEvent struct {
	TransactionID string `json:"transaction_id"`
	Event         string `json:"event"`
	CourierID     string `json:"courier_id"`
	Notes         string `json:"notes"`
}

// eventEnvelope handles the structured delivery mode where the courier
// payload is nested inside a "data" field.
type eventEnvelope struct {
	Data courierEvent `json:"data"`
}

var eventStatuses = map[string]models.TransactionStatus{
	"confirmed": models.StatusPendingPickup,
	"rejected":  models.StatusRejected,
	"assigned":  models.StatusAssignedPickup,
	"picked_up": models.StatusPickedUp,
	"delivered": models.StatusCompleted,
}

func main() {
	addr := getEnv("PORT", "8080")

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI env var is not set")
	}
	mongoDB := getEnv("MONGO_DB", "limbahku")

	ctx := context.Background()
	store, err := services.NewMongoTransactionStore(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Fatalf("mongo transaction init failed: %v", err)
	}
	defer store.Close(ctx)

	catalog, err := services.NewMongoCatalogService(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Fatalf("mongo catalog init failed: %v", err)
	}
	defer catalog.Close(ctx)

	profiles, err := services.NewMongoProfileService(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Fatalf("mongo profile init failed: %v", err)
	}
	defer profiles.Close(ctx)

	transactions := services.NewTransactionService(store, catalog, profiles)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	http.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		handleCourierEvent(w, r, transactions)
	})

	log.Printf("fulfillment-worker listening on :%s", addr)
	log.Fatal(http.ListenAndServe(":"+addr, nil))
}

func handleCourierEvent(w http.ResponseWriter, r *http.Request, transactions *services.TransactionService) {
	if r.Method != http.MethodPost {
		log.Printf("[worker] rejected non-POST method=%s", r.Method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[worker] failed to read request body: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var ev courierEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		log.Printf("[worker] failed to decode event body: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Some delivery modes wrap the payload in an envelope with the event
	// nested under "data".
	if ev.TransactionID == "" {
		var envelope eventEnvelope
		if err := json.Unmarshal(rawBody, &envelope); err == nil && envelope.Data.TransactionID != "" {
			ev = envelope.Data
		}
	}

	log.Printf("[worker] event received: transaction=%s event=%s courier=%s",
		ev.TransactionID, ev.Event, ev.CourierID)

	if ev.TransactionID == "" {
		log.Printf("[worker] skipping event: transaction_id is empty")
		w.WriteHeader(http.StatusOK)
		return
	}

	status, ok := eventStatuses[strings.ToLower(ev.Event)]
	if !ok {
		log.Printf("[worker] skipping unknown event type: %q", ev.Event)
		w.WriteHeader(http.StatusOK)
		return
	}

	notes := ev.Notes
	if notes == "" && ev.CourierID != "" {
		notes = "Courier " + ev.CourierID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tx, err := transactions.AdvanceStatus(ctx, ev.TransactionID, status, notes)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			log.Printf("[worker] transaction not found: %s", ev.TransactionID)
			// Acknowledge so the courier does not retry a dead event.
			w.WriteHeader(http.StatusOK)
			return
		}
		if errors.Is(err, services.ErrInvalidTransition) {
			log.Printf("[worker] transition not allowed: transaction=%s to=%s", ev.TransactionID, status)
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Printf("[worker] advance failed: transaction=%s err=%v", ev.TransactionID, err)
		// Retry by returning 500; the courier webhook will redeliver.
		http.Error(w, "advance failed", http.StatusInternalServerError)
		return
	}

	log.Printf("[worker] DONE: transaction=%s status=%s", tx.ID, tx.Status)
	w.WriteHeader(http.StatusOK)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
