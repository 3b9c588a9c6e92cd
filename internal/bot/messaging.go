package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

func (a *App) cbMessageBuyer(c tele.Context) error {
	return a.startRelay(c, session.StepMessagingBuyer)
}

func (a *App) cbMessageSeller(c tele.Context) error {
	return a.startRelay(c, session.StepMessagingSeller)
}

func (a *App) startRelay(c tele.Context, step session.Step) error {
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
		prompt := messageSellerPrompt(orderID)
		if step == session.StepMessagingBuyer {
			prompt = messageBuyerPrompt(orderID)
		}
		if err := tghelpers.SendMD(c, prompt); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{Step: step, OrderID: orderID})
		return nil
	})
}

// stepRelayText forwards the typed message to the order's counterpart with a
// reply keyboard, after verifying the sender belongs to the order.
func (a *App) stepRelayText(ctx context.Context, c tele.Context, conv *session.Conversation, toBuyer bool) error {
	user, err := a.market.User(ctx, c.Sender().ID)
	if err != nil {
		a.sessions.Delete(ctx, c.Sender().ID)
		return c.Send(restartHint)
	}

	order, targetID, err := a.market.RelayTarget(ctx, user.ID, conv.OrderID)
	if err != nil {
		a.sessions.Delete(ctx, c.Sender().ID)
		if errors.Is(err, service.ErrNotAuthorized) {
			return c.Send("❌ Invalid order or access denied.")
		}
		return err
	}

	target, err := a.market.UserByID(ctx, targetID)
	if err != nil {
		a.sessions.Delete(ctx, c.Sender().ID)
		return err
	}

	orderData := strconv.FormatInt(order.ID, 10)
	from := "buyer"
	replyUnique := cbMessageBuyer
	rows := [][]keyboard.InlineBtn{
		{{Text: "💬 Reply", Unique: replyUnique, Data: orderData}},
	}
	if toBuyer {
		from = "seller"
		replyUnique = cbMessageSeller
		rows = [][]keyboard.InlineBtn{
			{{Text: "💬 Reply", Unique: replyUnique, Data: orderData}},
			{{Text: "📋 My Orders", Unique: cbMenuMyOrders}},
		}
	} else {
		rows = append(rows, []keyboard.InlineBtn{{Text: "💰 Send Custom Quote", Unique: cbSendQuote, Data: orderData}})
	}

	a.notify(c.Bot(), target.TelegramID,
		fmt.Sprintf("💬 *Message from %s*\n\n🆔 Order: #%d\n👤 From: %s\n\n%s", from, order.ID, user.Name, c.Text()),
		keyboard.InlineButtonsRows(rows...))

	a.sessions.Delete(ctx, c.Sender().ID)
	return c.Send(fmt.Sprintf("✅ Message sent regarding Order #%d!\n\nYou'll be notified when they reply.", order.ID), backToMenuMarkup())
}
