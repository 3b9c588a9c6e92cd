package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/repository"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// cbSendQuote puts the seller into the quote-typing step for the order in
// the payload.
func (a *App) cbSendQuote(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		if err := tghelpers.SendMD(c, quotePrompt(orderID)); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{
			Step:    session.StepCreatingQuote,
			OrderID: orderID,
		})
		return nil
	})
}

func (a *App) stepQuoteText(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	price, description, err := service.ParseQuote(c.Text())
	if err != nil {
		// Re-prompt without advancing.
		return c.Send("❌ Invalid price format. Please start with a positive number.\n\nExample: 25.00 Logo design with 3 revisions")
	}

	user, err := a.market.User(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	order, err := a.market.SubmitQuote(ctx, user.ID, conv.OrderID, price, description)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) || errors.Is(err, repository.ErrOrderNotFound) {
			a.sessions.Delete(ctx, c.Sender().ID)
			return c.Send("❌ Invalid order or access denied.")
		}
		return err
	}

	total := pricing.Total(price)
	if buyer, berr := a.market.UserByID(ctx, order.BuyerID); berr == nil {
		orderData := strconv.FormatInt(order.ID, 10)
		buyerText := fmt.Sprintf(`💰 *Custom Quote Received!*

🆔 Order: #%d
👤 Seller: %s

💵 Quoted Price: %s
💳 You Pay: %s (incl. 15%% commission)

📝 *What's included:*
%s

Accept to get your payment link, or decline:`,
			order.ID, user.Name,
			pricing.USD(price), pricing.USD(total),
			description)
		buyerMarkup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "✅ Accept Quote", Unique: cbAcceptQuote, Data: orderData}},
			[]keyboard.InlineBtn{{Text: "💬 Message Seller", Unique: cbMessageSeller, Data: orderData}},
			[]keyboard.InlineBtn{{Text: "❌ Decline Quote", Unique: cbDeclineQuote, Data: orderData}},
		)
		a.notify(c.Bot(), buyer.TelegramID, buyerText, buyerMarkup)
	}

	a.sessions.Delete(ctx, c.Sender().ID)
	return c.Send(fmt.Sprintf(
		"✅ Quote sent!\n\n🆔 Order: #%d\n💵 Your price: %s\n💳 Buyer pays: %s\n\nYou'll be notified when the buyer responds.",
		order.ID, pricing.USD(price), pricing.USD(total)),
		backToMenuMarkup())
}

// cbAcceptQuote accepts the counteroffer and hands the buyer a payment link.
// The rating prompt is scheduled through the marketplace layer.
func (a *App) cbAcceptQuote(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	bot := c.Bot()
	buyerTelegramID := c.Sender().ID
	res, err := a.market.AcceptQuote(ctx, user.ID, orderID, func() {
		a.sendRatingPrompt(bot, buyerTelegramID, orderID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return c.Respond(&tele.CallbackResponse{Text: "This quote is no longer open."})
		}
		return err
	}

	markup := &tele.ReplyMarkup{}
	pay := markup.URL(fmt.Sprintf("💳 Pay %s Now", pricing.USD(res.TotalAmount)), res.PaymentURL)
	back := markup.Data("🏠 Back to Menu", cbBackToMenu)
	markup.Inline(markup.Row(pay), markup.Row(back))

	text := fmt.Sprintf(`✅ *Quote Accepted!*

🆔 Order: #%d
💳 Amount Due: %s

Complete your payment to start the work. The seller has been notified.`,
		orderID, pricing.USD(res.TotalAmount))
	if err := tghelpers.EditOrSendMD(c, text, markup); err != nil {
		return err
	}

	if seller, serr := a.market.UserByID(ctx, res.Order.SellerID); serr == nil {
		a.notify(bot, seller.TelegramID, fmt.Sprintf(
			"🎉 *Quote Accepted!*\n\n🆔 Order: #%d\n👤 Buyer: %s\n💵 Your earnings: %s\n\nThe buyer received the payment link. Start working once payment is confirmed!",
			orderID, user.Name, pricing.USD(res.Order.CustomPrice.Float64)))
	}
	return nil
}

// sendRatingPrompt delivers the deferred five-star keyboard after the
// post-acceptance delay.
func (a *App) sendRatingPrompt(b outbound, telegramID, orderID int64) {
	markup := &tele.ReplyMarkup{}
	stars := make([]tele.Btn, 0, 5)
	for n := 1; n <= 5; n++ {
		stars = append(stars, markup.Data(
			fmt.Sprintf("%d⭐", n),
			cbRate,
			fmt.Sprintf("%d|%d", orderID, n),
		))
	}
	markup.Inline(markup.Row(stars...))
	a.notify(b, telegramID,
		fmt.Sprintf("🌟 *How was your experience?*\n\n🆔 Order: #%d\n\nPlease rate the seller's service:", orderID),
		markup)
}

func (a *App) cbDeclineQuote(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	order, err := a.market.DeclineQuote(ctx, user.ID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return c.Respond(&tele.CallbackResponse{Text: "This quote is no longer open."})
		}
		return err
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🔍 Browse Other Services", Unique: cbMenuBrowse}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	if err := tghelpers.EditOrSendMD(c,
		fmt.Sprintf("❌ *Quote Declined*\n\n🆔 Order: #%d\n\nNo problem! Feel free to browse other services.", orderID),
		markup); err != nil {
		return err
	}

	if seller, serr := a.market.UserByID(ctx, order.SellerID); serr == nil {
		a.notify(c.Bot(), seller.TelegramID, fmt.Sprintf(
			"❌ *Quote Declined*\n\n🆔 Order: #%d\n👤 Buyer: %s\n\nThe buyer declined your quote. The order is closed.",
			orderID, user.Name))
	}
	return nil
}

// cbDeclineRequest lets the seller turn down a request before quoting.
func (a *App) cbDeclineRequest(c tele.Context) error {
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	order, err := a.market.DeclineRequest(ctx, user.ID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return c.Respond(&tele.CallbackResponse{Text: "This request is no longer open."})
		}
		return err
	}

	if err := tghelpers.EditOrSendMD(c,
		fmt.Sprintf("❌ *Request Declined*\n\n🆔 Order: #%d\n\nThe buyer has been notified.", orderID),
		backToMenuMarkup()); err != nil {
		return err
	}

	if buyer, berr := a.market.UserByID(ctx, order.BuyerID); berr == nil {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔍 Browse Other Services", Unique: cbMenuBrowse}},
			[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
		)
		a.notify(c.Bot(), buyer.TelegramID, fmt.Sprintf(
			"😔 *Request Declined*\n\n🆔 Order: #%d\n\nThe seller declined your request. Don't worry, there are plenty of other great services!",
			orderID), markup)
	}
	return nil
}
