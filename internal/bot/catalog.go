package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// sendListings renders browse/search results with a buy button per row.
func (a *App) sendListings(c tele.Context, title string, listings []models.ServiceListing) error {
	var rows [][]keyboard.InlineBtn
	for i, l := range listings {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("🛒 Buy #%d", i+1),
			Unique: cbBuy,
			Data:   strconv.FormatInt(l.ID, 10),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}})
	return tghelpers.EditOrSendMD(c, renderListings(title, listings), keyboard.InlineButtonsRows(rows...))
}

func (a *App) cbBrowse(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	listings, err := a.market.Browse(ctx)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return c.EditOrSend("No services available yet 😔\n\nBe the first to add a service!")
	}
	return a.sendListings(c, "📋 Available Services", listings)
}

func (a *App) handleBrowseCommand(c tele.Context) error {
	return a.cbBrowse(c)
}

// cbSearch enters the search flow; the keyword arrives as the next text.
func (a *App) cbSearch(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		if err := tghelpers.EditOrSendMD(c, searchPrompt, backToMenuMarkup()); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{Step: session.StepSearchKeyword})
		return nil
	})
}

// handleSearchCommand supports both "/search keyword" and bare "/search"
// (which enters the keyword flow).
func (a *App) handleSearchCommand(c tele.Context) error {
	keyword := strings.TrimSpace(c.Message().Payload)
	if keyword == "" {
		return a.cbSearch(c)
	}
	return a.runSearch(c, keyword)
}

func (a *App) stepSearchKeyword(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	keyword := c.Text()
	a.sessions.Delete(ctx, c.Sender().ID)
	return a.runSearch(c, keyword)
}

func (a *App) runSearch(c tele.Context, keyword string) error {
	ctx := tghelpers.BuildContext(c)
	listings, err := a.market.Search(ctx, keyword)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔍 Browse All", Unique: cbMenuBrowse}},
			[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
		)
		return tghelpers.SendMD(c,
			fmt.Sprintf("🔍 *Search Results*\n\nNo services found for \"%s\" 😔\n\nTry different keywords or browse all services.", keyword),
			markup)
	}
	return a.sendListings(c, fmt.Sprintf("🔍 Search: \"%s\"", keyword), listings)
}

// cbAddService starts the service creation flow for sellers.
func (a *App) cbAddService(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	if !user.Role.CanSell() {
		return c.EditOrSend(fmt.Sprintf("❌ Only sellers can add services.\n\nContact %s to change your role.", a.cfg.Marketplace.SupportHandle))
	}
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		if err := c.EditOrSend(serviceTitlePrompt); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{Step: session.StepServiceTitle})
		return nil
	})
}

func (a *App) handleAddServiceCommand(c tele.Context) error {
	return a.cbAddService(c)
}

func (a *App) stepServiceTitle(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	if err := c.Send("Great! Now provide a description (max 120 characters):"); err != nil {
		return err
	}
	next := *conv
	next.Step = session.StepServiceDescription
	next.Draft.Title = c.Text()
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

func (a *App) stepServiceDescription(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	if err := service.ValidateDescription(c.Text()); err != nil {
		// Re-prompt; the step does not advance.
		return c.Send("Description too long! Please keep it under 120 characters.")
	}
	if err := c.Send("What's your net price in USD? (e.g., 5.00)\nNote: Customers will pay this + 15% commission"); err != nil {
		return err
	}
	next := *conv
	next.Step = session.StepServicePrice
	next.Draft.Description = c.Text()
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

func (a *App) stepServicePrice(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	price, err := service.ParsePrice(c.Text())
	if err != nil {
		return c.Send("Please enter a valid price (e.g., 5.00)")
	}
	if err := c.Send(`How long will delivery take? (e.g., "24 hours", "3 days")`); err != nil {
		return err
	}
	next := *conv
	next.Step = session.StepServiceDelivery
	next.Draft.NetPrice = price
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

func (a *App) stepServiceDelivery(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	if err := c.Send("What's your payment method for receiving payments?\n(e.g., \"PayPal: email@example.com\", \"USDT wallet: 0x123...\")"); err != nil {
		return err
	}
	next := *conv
	next.Step = session.StepServicePayment
	next.Draft.DeliveryTime = c.Text()
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

func (a *App) stepServicePayment(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	user, err := a.market.User(ctx, c.Sender().ID)
	if err != nil {
		return err
	}

	draft := conv.Draft
	draft.PaymentMethod = c.Text()
	if _, err := a.market.CreateService(ctx, user.ID, draft.Title, draft.Description, draft.NetPrice, draft.DeliveryTime, draft.PaymentMethod); err != nil {
		return err
	}
	a.sessions.Delete(ctx, c.Sender().ID)

	return c.Send(fmt.Sprintf(
		"✅ Service added successfully!\n\n💼 %s\n📝 %s\n💰 Customer pays: %s (you get: %s)\n⏱️ Delivery: %s",
		draft.Title, draft.Description,
		pricing.USD(pricing.Total(draft.NetPrice)), pricing.USD(draft.NetPrice),
		draft.DeliveryTime,
	), backToMenuMarkup())
}

func (a *App) cbMyServices(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
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
		return tghelpers.EditOrSendMD(c, "💼 *My Services*\n\nYou haven't added any services yet.\n\nStart by creating your first service!", markup)
	}

	var b strings.Builder
	b.WriteString("💼 *My Services*\n\n")
	for i, svc := range services {
		promoted := ""
		if svc.IsPromoted {
			promoted = "🌟 "
		}
		fmt.Fprintf(&b, "%d. %s*%s*\n", i+1, promoted, svc.Title)
		fmt.Fprintf(&b, "   💰 %s • ⏱️ %s\n", pricing.USD(pricing.Total(svc.NetPrice)), svc.DeliveryTime)
		fmt.Fprintf(&b, "   📝 %s\n\n", svc.Description)
	}
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "➕ Add Service", Unique: cbMenuAddService}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	return tghelpers.EditOrSendMD(c, b.String(), markup)
}

func (a *App) handleMyServicesCommand(c tele.Context) error {
	return a.cbMyServices(c)
}

func (a *App) cbTopSellers(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sellers, err := a.market.TopSellers(ctx)
	if err != nil {
		return err
	}

	if len(sellers) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔍 Browse Services", Unique: cbMenuBrowse}},
			[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
		)
		return tghelpers.EditOrSendMD(c, "🏆 *Top Sellers*\n\nNo sellers yet! Be the first to add a service and start earning.", markup)
	}

	var b strings.Builder
	b.WriteString("🏆 *Top Sellers Leaderboard*\n\n")
	for i, s := range sellers {
		medal := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		promoted := ""
		if s.IsPromoted {
			promoted = "🌟 "
		}
		rating := "⭐ New"
		if s.AvgRating > 0 {
			rating = fmt.Sprintf("⭐ %.1f", s.AvgRating)
		}
		fmt.Fprintf(&b, "%s %s*%s*\n", medal, promoted, s.Name)
		fmt.Fprintf(&b, "   %s • %d orders • %s earned\n", rating, s.TotalOrders, pricing.USD(s.TotalEarned))
		fmt.Fprintf(&b, "   Active Services: %d\n\n", s.ActiveServices)
	}
	b.WriteString("💡 _Want to be featured? Promote your services for just $1.99/month!_")

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🌟 Promote My Services", Unique: cbMenuPromote}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	return tghelpers.EditOrSendMD(c, b.String(), markup)
}

func (a *App) cbSalesDashboard(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	stats, err := a.market.SellerStats(ctx, user.ID)
	if err != nil {
		return err
	}

	avgRating := "No ratings yet"
	if stats.AvgRating > 0 {
		avgRating = fmt.Sprintf("%.1f", stats.AvgRating)
	}
	text := fmt.Sprintf(`📊 *Sales Dashboard*

💰 *Earnings:*
• Total Orders: %d
• Completed: %d
• Pending: %d
• Total Earned: %s

⭐ *Reputation:*
• Average Rating: %s
• Total Reviews: %d

📈 *Performance:*
• Active Services: %d
• This Month: %d orders`,
		stats.TotalOrders, stats.CompletedOrders, stats.PendingOrders, pricing.USD(stats.TotalEarned),
		avgRating, stats.TotalReviews,
		stats.ActiveServices, stats.MonthlyOrders)

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "💼 My Services", Unique: cbMenuMyServices}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}
