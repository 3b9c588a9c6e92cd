package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/repository"
	"github.com/xiniluca/skillswap/internal/service"

	tele "gopkg.in/telebot.v4"
)

// cbRate stores the buyer's star rating. Payload is "orderID|rating" from the
// deferred rating keyboard.
func (a *App) cbRate(c tele.Context) error {
	orderID, rating, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	order, err := a.market.RateOrder(ctx, user.ID, orderID, int(rating))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyReviewed), errors.Is(err, repository.ErrStatusConflict):
			return c.EditOrSend("❌ Error submitting rating. You may have already rated this order.")
		case errors.Is(err, service.ErrInvalidRating):
			return c.Respond(&tele.CallbackResponse{Text: "Rating must be between 1 and 5."})
		}
		return err
	}

	stars := strings.Repeat("⭐", int(rating))
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📋 My Orders", Unique: cbMenuMyOrders}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	if err := tghelpers.EditOrSendMD(c,
		fmt.Sprintf("🌟 *Thank You for Your Rating!*\n\n🆔 Order: #%d\nYour rating: %s\n\nYour feedback helps other buyers choose great sellers.", orderID, stars),
		markup); err != nil {
		return err
	}

	if seller, serr := a.market.UserByID(ctx, order.SellerID); serr == nil {
		a.notify(c.Bot(), seller.TelegramID, fmt.Sprintf(
			"⭐ *New Rating Received!*\n\n🆔 Order: #%d\n👤 From: %s\nRating: %s\n\nKeep up the great work!",
			orderID, user.Name, stars))
	}
	return nil
}
