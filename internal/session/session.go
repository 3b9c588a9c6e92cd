// Package session holds per-user conversation state for multi-turn flows.
//
// Every user has at most one active conversation. State lives in memory (or
// Redis) only: a process restart drops all mid-flow conversations, which is an
// accepted limitation. Entries carry an updated-at stamp so a sweeper can
// evict flows the user abandoned.
package session

import (
	"context"
	"time"
)

// Step identifies where a conversation currently waits for input.
type Step string

const (
	// Registration flow.
	StepName Step = "name"
	StepRole Step = "role"

	// Service creation flow.
	StepServiceTitle       Step = "service_title"
	StepServiceDescription Step = "service_description"
	StepServicePrice       Step = "service_price"
	StepServiceDelivery    Step = "service_delivery"
	StepServicePayment     Step = "service_payment"

	// Purchase / requirements collection flow.
	StepCollectRequirements Step = "collect_requirements"
	StepTypingRequirements  Step = "typing_requirements"
	StepUploadingDocs       Step = "uploading_docs"

	// Quoting, messaging and search flows.
	StepCreatingQuote   Step = "creating_quote"
	StepMessagingBuyer  Step = "messaging_buyer"
	StepMessagingSeller Step = "messaging_seller"
	StepSearchKeyword   Step = "search_keyword"
)

// ServiceDraft accumulates fields while a seller creates a listing.
type ServiceDraft struct {
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	NetPrice      float64 `json:"net_price,omitempty"`
	DeliveryTime  string `json:"delivery_time,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// FileRef describes one file the buyer attached during requirement collection.
type FileRef struct {
	FileID   string `json:"file_id"`
	FileType string `json:"file_type"`
	FileName string `json:"file_name"`
	Info     string `json:"info"`
}

// ListingSnapshot caches the service details shown when the purchase flow
// started, so later steps do not re-query the catalog.
type ListingSnapshot struct {
	ServiceID  int64   `json:"service_id"`
	SellerID   int64   `json:"seller_id"`
	SellerName string  `json:"seller_name"`
	Title      string  `json:"title"`
	NetPrice   float64 `json:"net_price"`
}

// Conversation is the per-user state machine entry. Only the field group
// relevant to the current step is populated.
type Conversation struct {
	Step Step `json:"step"`

	// Registration.
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`

	// Service creation.
	Draft ServiceDraft `json:"draft,omitempty"`

	// Purchase / requirements.
	ServiceID    int64            `json:"service_id,omitempty"`
	Listing      *ListingSnapshot `json:"listing,omitempty"`
	Requirements []string         `json:"requirements,omitempty"`
	Files        []FileRef        `json:"files,omitempty"`

	// Quoting and messaging.
	OrderID int64 `json:"order_id,omitempty"`

	// UpdatedAt is refreshed on every Put and drives TTL eviction.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps at most one Conversation per user.
//
// Serialize runs fn while holding a per-user lock, guaranteeing at most one
// in-flight transition per user even when Telegram delivers updates for the
// same user concurrently.
type Store interface {
	Get(ctx context.Context, userID int64) (*Conversation, bool)
	Put(ctx context.Context, userID int64, conv *Conversation)
	Delete(ctx context.Context, userID int64)
	Len(ctx context.Context) int
	Serialize(userID int64, fn func() error) error
}

// Sweeper is implemented by stores that evict stale conversations themselves.
// The Redis store relies on native key TTLs instead.
type Sweeper interface {
	Sweep(now time.Time) int
}

// RunSweeper periodically evicts conversations idle longer than the store's
// TTL, until ctx is cancelled. No-op for stores without a Sweeper.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, onSweep func(removed int)) {
	sw, ok := store.(Sweeper)
	if !ok || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := sw.Sweep(now); removed > 0 && onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
