package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/repository"

	tele "gopkg.in/telebot.v4"
)

// cbPromotionOptions lists the seller's services with their promotion state
// and a promote button for each inactive one.
func (a *App) cbPromotionOptions(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	if !user.Role.CanSell() {
		return c.EditOrSend(fmt.Sprintf("❌ Only sellers can promote services.\n\nContact %s to change your role.", a.cfg.Marketplace.SupportHandle))
	}
	ctx := tghelpers.BuildContext(c)
	services, err := a.market.SellerServices(ctx, user.ID)
	if err != nil {
		return err
	}

	if len(services) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "➕ Add Service", Unique: cbMenuAddService}},
			[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
		)
		return tghelpers.EditOrSendMD(c, "🌟 *Promote Your Services*\n\nYou need at least one service before you can promote it.\n\nAdd your first service to get started!", markup)
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString("🌟 *Promote Your Services*\n\n")
	fmt.Fprintf(&b, "Get featured at the top of search results and the leaderboard for just %s/%d days!\n\n",
		pricing.USD(a.market.PromotionPrice()), a.market.PromotionDays())

	var rows [][]keyboard.InlineBtn
	for i, svc := range services {
		if svc.PromotionActive(now) {
			fmt.Fprintf(&b, "%d. 🌟 *%s*\n   Promoted until %s\n\n", i+1, svc.Title, formatDate(svc.PromotionExpires.Time))
			continue
		}
		fmt.Fprintf(&b, "%d. *%s*\n   Not promoted\n\n", i+1, svc.Title)
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("🌟 Promote #%d", i+1),
			Unique: cbPromoteService,
			Data:   strconv.FormatInt(svc.ID, 10),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}})
	return tghelpers.EditOrSendMD(c, b.String(), keyboard.InlineButtonsRows(rows...))
}

func (a *App) handlePromoteCommand(c tele.Context) error {
	return a.cbPromotionOptions(c)
}

// cbPromoteService builds the promotion payment link and schedules the
// deferred activation notice.
func (a *App) cbPromoteService(c tele.Context) error {
	serviceID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)

	offer, err := a.market.OfferPromotion(ctx, user.ID, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return c.Respond(&tele.CallbackResponse{Text: "That service is not yours or no longer exists."})
		}
		return err
	}

	markup := &tele.ReplyMarkup{}
	pay := markup.URL(fmt.Sprintf("💳 Pay %s Now", pricing.USD(offer.PriceUSD)), offer.PaymentURL)
	back := markup.Data("🏠 Back to Menu", cbBackToMenu)
	markup.Inline(markup.Row(pay), markup.Row(back))

	text := fmt.Sprintf(`🌟 *Promote: %s*

💰 Price: %s for %d days
🔖 Ref: %s

Your service will be:
• Featured at the top of browse results
• Highlighted with a 🌟 badge
• Prioritized on the leaderboard

Complete the payment to activate your promotion:`,
		offer.Service.Title, pricing.USD(offer.PriceUSD), a.market.PromotionDays(), offer.Ref)
	if err := tghelpers.EditOrSendMD(c, text, markup); err != nil {
		return err
	}

	if adminID := a.cfg.Core.Telegram.AdminID; adminID != 0 {
		a.notify(c.Bot(), adminID, fmt.Sprintf(
			"🌟 *Promotion Payment Pending*\n\n👤 Seller: %s\n💼 Service: %s\n🔖 Ref: %s\n💰 Amount: %s",
			user.Name, offer.Service.Title, offer.Ref, pricing.USD(offer.PriceUSD)))
	}

	bot := c.Bot()
	sellerTelegramID := c.Sender().ID
	title := offer.Service.Title
	a.market.SchedulePromotionActivation(serviceID, func(expires time.Time) {
		a.notify(bot, sellerTelegramID, fmt.Sprintf(
			"🎉 *Promotion Activated!*\n\n💼 Service: %s\n🌟 Featured until: %s\n\nYour service now appears at the top of browse and search results!",
			title, formatDate(expires)))
	})
	return nil
}
