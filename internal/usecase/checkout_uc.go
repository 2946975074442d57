package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bufaso/shopbot/internal/domain"
)

// Step is the per-chat checkout conversation state.
type Step string

const (
	StepNone    Step = ""
	StepName    Step = "waiting_name"
	StepPhone   Step = "waiting_phone"
	StepAddress Step = "waiting_address"
)

type checkoutSession struct {
	step Step
	info domain.CheckoutInfo
	cart *domain.Cart
}

// CheckoutUC drives the linear name → phone → address conversation and ends
// it with order creation. One session per chat; the map is shared across
// update goroutines, hence the mutex.
type CheckoutUC struct {
	Orders *OrderUC

	mu       sync.Mutex
	sessions map[int64]*checkoutSession
}

func NewCheckoutUC(orders *OrderUC) *CheckoutUC {
	return &CheckoutUC{Orders: orders, sessions: make(map[int64]*checkoutSession)}
}

// Step reports the chat's current checkout step.
func (uc *CheckoutUC) Step(chatID int64) Step {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if s, ok := uc.sessions[chatID]; ok {
		return s.step
	}
	return StepNone
}

// Start begins checkout for the chat. The cart must be non-empty; it stays
// owned by the chat session and is only read again at the final step.
func (uc *CheckoutUC) Start(chatID int64, cart *domain.Cart, userInfo string) error {
	if cart == nil || cart.Empty() {
		return domain.NewValidationError("cart")
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.sessions[chatID] = &checkoutSession{
		step: StepName,
		info: domain.CheckoutInfo{UserInfo: userInfo, ChatID: chatID},
		cart: cart,
	}
	return nil
}

// Reset drops the chat's checkout state and collected data. The cart is not
// touched.
func (uc *CheckoutUC) Reset(chatID int64) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.sessions, chatID)
}

// Input feeds one text message into the conversation and returns the step
// the chat is in afterwards, plus the created order id once the final step
// completes. Empty input does not advance.
//
// If order creation fails the session is reset so the user is never left
// stuck in waiting_address; the error is returned for the caller to render
// and the cart is preserved for a retry.
func (uc *CheckoutUC) Input(ctx context.Context, chatID int64, text string) (Step, string, error) {
	uc.mu.Lock()
	s, ok := uc.sessions[chatID]
	if !ok || s.step == StepNone {
		uc.mu.Unlock()
		return StepNone, "", nil
	}
	if text == "" {
		step := s.step
		uc.mu.Unlock()
		return step, "", nil
	}

	switch s.step {
	case StepName:
		s.info.Name = text
		s.step = StepPhone
		uc.mu.Unlock()
		return StepPhone, "", nil
	case StepPhone:
		s.info.Phone = text
		s.step = StepAddress
		uc.mu.Unlock()
		return StepAddress, "", nil
	case StepAddress:
		// Snapshot under the lock and end the session before the store call;
		// Create must not run while holding the session mutex.
		s.info.Address = text
		info := s.info
		cart := s.cart
		delete(uc.sessions, chatID)
		uc.mu.Unlock()

		orderID, err := uc.Orders.Create(ctx, info, cart)
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("checkout failed, session reset")
			return StepNone, "", err
		}
		cart.Clear()
		return StepNone, orderID, nil
	}
	uc.mu.Unlock()
	return StepNone, "", nil
}
