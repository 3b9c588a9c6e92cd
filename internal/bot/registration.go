package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

func (a *App) stepName(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	name := c.Text()

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🛒 Buyer", Unique: cbRole, Data: string(models.RoleBuyer)}},
		[]keyboard.InlineBtn{{Text: "💼 Seller", Unique: cbRole, Data: string(models.RoleSeller)}},
		[]keyboard.InlineBtn{{Text: "🔄 Both", Unique: cbRole, Data: string(models.RoleBoth)}},
	)
	if err := c.Send(fmt.Sprintf("Nice to meet you, %s! 👋\n\nWhat's your role on SkillSwap?", name), markup); err != nil {
		return err
	}

	next := *conv
	next.Step = session.StepRole
	next.Name = name
	next.Username = c.Sender().Username
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

// cbRoleChosen completes registration. Only meaningful while the user is at
// the role step; a stale button press is ignored.
func (a *App) cbRoleChosen(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		conv, ok := a.sessions.Get(ctx, userID)
		if !ok || conv.Step != session.StepRole {
			return nil
		}

		role := models.Role(callbacks.CallbackPayload(c))
		user, err := a.market.Register(ctx, userID, conv.Name, conv.Username, role)
		if errors.Is(err, service.ErrInvalidRole) {
			return c.Respond(&tele.CallbackResponse{Text: "Unknown role"})
		}
		if err != nil {
			return err
		}

		a.sessions.Delete(ctx, userID)

		if err := c.EditOrSend(fmt.Sprintf(
			"✅ Registration complete!\n\n👤 Name: %s\n🎭 Role: %s\n\nWelcome to SkillSwap! Use /start to see the main menu.",
			user.Name, user.Role,
		)); err != nil {
			return err
		}
		if user.Role.CanSell() {
			return c.Send("💡 As a seller, you can add services with the menu button")
		}
		return nil
	})
}
