package bot

import (
	"context"

	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// flowManager adapts the conversation store to the text/media router. All
// step transitions run inside Serialize, so rapid double-sends from the same
// user cannot interleave on the conversation entry.
type flowManager struct {
	app *App
}

func (f *flowManager) InProgress(userID int64) bool {
	_, ok := f.app.sessions.Get(context.Background(), userID)
	return ok
}

func (f *flowManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	return f.app.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		conv, ok := f.app.sessions.Get(ctx, userID)
		if !ok {
			return nil
		}
		return f.app.dispatchStep(ctx, c, conv)
	})
}

// dispatchStep routes an inbound text or media message by the conversation's
// current step. Handlers mutate a copy of the conversation and store it only
// after their outbound side effects succeed, so a failed transition leaves
// the user where they were.
func (a *App) dispatchStep(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	msg := c.Message()
	if msg != nil && (msg.Document != nil || msg.Photo != nil || msg.Video != nil) {
		if conv.Step == session.StepUploadingDocs {
			return a.stepUploadFile(ctx, c, conv)
		}
		// A file outside the upload step is ignored, matching the
		// decision-point behavior of the requirements flow.
		return nil
	}

	switch conv.Step {
	case session.StepName:
		return a.stepName(ctx, c, conv)
	case session.StepRole:
		// Waiting on the role button; free text is ignored.
		return nil
	case session.StepServiceTitle:
		return a.stepServiceTitle(ctx, c, conv)
	case session.StepServiceDescription:
		return a.stepServiceDescription(ctx, c, conv)
	case session.StepServicePrice:
		return a.stepServicePrice(ctx, c, conv)
	case session.StepServiceDelivery:
		return a.stepServiceDelivery(ctx, c, conv)
	case session.StepServicePayment:
		return a.stepServicePayment(ctx, c, conv)
	case session.StepCollectRequirements:
		// Waiting on a requirements button.
		return nil
	case session.StepTypingRequirements:
		return a.stepRequirementsText(ctx, c, conv)
	case session.StepUploadingDocs:
		// Text during the upload step counts as a typed requirement.
		return a.stepRequirementsText(ctx, c, conv)
	case session.StepCreatingQuote:
		return a.stepQuoteText(ctx, c, conv)
	case session.StepMessagingBuyer:
		return a.stepRelayText(ctx, c, conv, true)
	case session.StepMessagingSeller:
		return a.stepRelayText(ctx, c, conv, false)
	case session.StepSearchKeyword:
		return a.stepSearchKeyword(ctx, c, conv)
	}
	return nil
}
