package bot

import (
	"errors"
	"fmt"

	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/repository"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

func backToMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🏠 Back to Menu", Unique: cbBackToMenu},
	})
}

// handleStart shows the main menu for registered users and begins the
// registration flow for everyone else.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	user, err := a.market.User(ctx, c.Sender().ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return a.startRegistration(c)
	}
	if err != nil {
		return err
	}
	return a.sendMainMenu(c, user)
}

func (a *App) startRegistration(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		if err := c.Send(welcomeNewUser); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{Step: session.StepName})
		return nil
	})
}

func (a *App) sendMainMenu(c tele.Context, user *models.User) error {
	return c.Send(mainMenuText(user), mainMenuMarkup(user))
}

func mainMenuMarkup(user *models.User) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	if user.Role.CanBuy() {
		rows = append(rows,
			[]keyboard.InlineBtn{{Text: "🔍 Browse Services", Unique: cbMenuBrowse}},
			[]keyboard.InlineBtn{{Text: "🔎 Search Services", Unique: cbMenuSearch}},
			[]keyboard.InlineBtn{{Text: "📋 My Orders", Unique: cbMenuMyOrders}},
		)
	}
	if user.Role.CanSell() {
		rows = append(rows,
			[]keyboard.InlineBtn{{Text: "💼 My Services", Unique: cbMenuMyServices}},
			[]keyboard.InlineBtn{{Text: "➕ Add Service", Unique: cbMenuAddService}},
			[]keyboard.InlineBtn{{Text: "📊 Sales Dashboard", Unique: cbMenuSales}},
			[]keyboard.InlineBtn{{Text: "🌟 Promote Services", Unique: cbMenuPromote}},
		)
	}
	rows = append(rows,
		[]keyboard.InlineBtn{{Text: "🏆 Top Sellers", Unique: cbMenuTopSellers}},
		[]keyboard.InlineBtn{{Text: "👤 My Profile", Unique: cbMenuProfile}},
		[]keyboard.InlineBtn{{Text: "🚀 What is SkillSwap?", Unique: cbMenuAbout}},
		[]keyboard.InlineBtn{{Text: "❓ Help", Unique: cbMenuHelp}},
	)
	return keyboard.InlineButtonsRows(rows...)
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, helpText(a.cfg.Marketplace.SupportHandle))
}

func (a *App) cbHelp(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	return tghelpers.EditOrSendMD(c, helpMenuText(a.cfg.Marketplace.SupportHandle), markup)
}

func (a *App) cbAbout(c tele.Context) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "➕ Add My Service", Unique: cbMenuAddService}},
		[]keyboard.InlineBtn{{Text: "🔍 Browse Services", Unique: cbMenuBrowse}},
		[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
	)
	return tghelpers.EditOrSendMD(c, aboutText, markup)
}

func (a *App) handleProfileCommand(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return tghelpers.SendMD(c, profileText(user, a.cfg.Marketplace.SupportHandle), backToMenuMarkup())
}

func (a *App) cbProfile(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return tghelpers.EditOrSendMD(c, profileText(user, a.cfg.Marketplace.SupportHandle), backToMenuMarkup())
}

func (a *App) cbBackToMenu(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return c.EditOrSend(mainMenuText(user), mainMenuMarkup(user))
}

// requireUser resolves the sender's registration. Unregistered users get the
// /start hint and a nil user with nil error.
func (a *App) requireUser(c tele.Context) (*models.User, error) {
	ctx := tghelpers.BuildContext(c)
	user, err := a.market.User(ctx, c.Sender().ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, c.Send("Please register first with /start")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// handlePlatformStats is the admin-only overview command.
func (a *App) handlePlatformStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	stats, err := a.market.PlatformStats(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(`📊 *Platform Statistics*

👥 Users: %d
💼 Services: %d
📋 Orders: %d
🏪 Active Sellers: %d`,
		stats.TotalUsers, stats.TotalServices, stats.TotalOrders, stats.ActiveSellers)
	return tghelpers.SendMD(c, text)
}
