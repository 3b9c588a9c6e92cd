package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xiniluca/skillswap/core/telegram/callbacks"
	tghelpers "github.com/xiniluca/skillswap/core/telegram/helpers"
	"github.com/xiniluca/skillswap/core/telegram/keyboard"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/pricing"
	"github.com/xiniluca/skillswap/internal/service"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

// requirementsMarkup is shown at the requirements decision point and again
// after each collected item.
func requirementsMarkup(serviceID int64) *tele.ReplyMarkup {
	data := strconv.FormatInt(serviceID, 10)
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📝 Type Requirements", Unique: cbReqText, Data: data}},
		[]keyboard.InlineBtn{{Text: "📎 Upload Documents", Unique: cbReqDocs, Data: data}},
		[]keyboard.InlineBtn{{Text: "✅ Send Request Now", Unique: cbSendRequest, Data: data}},
	)
}

// cbBuy starts the purchase flow for the listing in the callback payload.
func (a *App) cbBuy(c tele.Context) error {
	serviceID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return err
	}
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	listing, err := a.market.Listing(ctx, serviceID)
	if err != nil {
		return err
	}

	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		text := fmt.Sprintf(`🛒 *Order: %s*

👤 Seller: %s
💰 Total Price: %s
⏱️ Delivery: %s

Before sending your request, please provide your requirements so the seller knows exactly what you need:`,
			listing.Title, listing.SellerName,
			pricing.USD(pricing.Total(listing.NetPrice)), listing.DeliveryTime)
		if err := tghelpers.SendMD(c, text, requirementsMarkup(serviceID)); err != nil {
			return err
		}
		a.sessions.Put(ctx, userID, &session.Conversation{
			Step:      session.StepCollectRequirements,
			ServiceID: serviceID,
			Listing: &session.ListingSnapshot{
				ServiceID:  listing.ID,
				SellerID:   listing.SellerID,
				SellerName: listing.SellerName,
				Title:      listing.Title,
				NetPrice:   listing.NetPrice,
			},
		})
		return nil
	})
}

func (a *App) cbRequirementsText(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		conv, ok := a.sessions.Get(ctx, userID)
		if !ok || conv.Listing == nil {
			return c.Respond(&tele.CallbackResponse{Text: "This request has expired. Please start over."})
		}
		if err := tghelpers.SendMD(c, requirementsTextPrompt); err != nil {
			return err
		}
		next := *conv
		next.Step = session.StepTypingRequirements
		a.sessions.Put(ctx, userID, &next)
		return nil
	})
}

func (a *App) cbRequirementsDocs(c tele.Context) error {
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		conv, ok := a.sessions.Get(ctx, userID)
		if !ok || conv.Listing == nil {
			return c.Respond(&tele.CallbackResponse{Text: "This request has expired. Please start over."})
		}
		if err := tghelpers.SendMD(c, requirementsDocsPrompt); err != nil {
			return err
		}
		next := *conv
		next.Step = session.StepUploadingDocs
		a.sessions.Put(ctx, userID, &next)
		return nil
	})
}

// collectedSummary lists everything the buyer has attached so far.
func collectedSummary(conv *session.Conversation) string {
	var b strings.Builder
	b.WriteString("✅ Added to your request!\n\n📋 Current requirements:\n")
	for _, r := range conv.Requirements {
		b.WriteString(r)
		b.WriteString("\n")
	}
	for _, f := range conv.Files {
		b.WriteString(f.Info)
		b.WriteString("\n")
	}
	b.WriteString("\nAdd more or send your request:")
	return b.String()
}

func (a *App) stepRequirementsText(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	if conv.Listing == nil {
		a.sessions.Delete(ctx, c.Sender().ID)
		return c.Send(restartHint)
	}
	next := *conv
	next.Requirements = append(append([]string(nil), conv.Requirements...), "📝 "+c.Text())
	if err := c.Send(collectedSummary(&next), requirementsMarkup(next.ServiceID)); err != nil {
		return err
	}
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

// fileRef extracts the Telegram file reference from an inbound media message.
func fileRef(msg *tele.Message) (session.FileRef, bool) {
	switch {
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "document"
		}
		return session.FileRef{
			FileID:   msg.Document.FileID,
			FileType: string(models.FileDocument),
			FileName: name,
			Info:     "📎 " + name,
		}, true
	case msg.Photo != nil:
		return session.FileRef{
			FileID:   msg.Photo.FileID,
			FileType: string(models.FilePhoto),
			FileName: "image.jpg",
			Info:     "📎 image.jpg",
		}, true
	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		return session.FileRef{
			FileID:   msg.Video.FileID,
			FileType: string(models.FileVideo),
			FileName: name,
			Info:     "📎 " + name,
		}, true
	}
	return session.FileRef{}, false
}

func (a *App) stepUploadFile(ctx context.Context, c tele.Context, conv *session.Conversation) error {
	if conv.Listing == nil {
		a.sessions.Delete(ctx, c.Sender().ID)
		return c.Send(restartHint)
	}
	ref, ok := fileRef(c.Message())
	if !ok {
		return nil
	}
	next := *conv
	next.Files = append(append([]session.FileRef(nil), conv.Files...), ref)
	if err := c.Send(collectedSummary(&next), requirementsMarkup(next.ServiceID)); err != nil {
		return err
	}
	a.sessions.Put(ctx, c.Sender().ID, &next)
	return nil
}

// cbSendRequest stores the collected request, forwards any files to the
// seller, and notifies both sides.
func (a *App) cbSendRequest(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	userID := c.Sender().ID
	return a.sessions.Serialize(userID, func() error {
		ctx := tghelpers.BuildContext(c)
		conv, ok := a.sessions.Get(ctx, userID)
		if !ok || conv.Listing == nil {
			return c.Respond(&tele.CallbackResponse{Text: "This request has expired. Please start over."})
		}

		files := make([]models.OrderFile, 0, len(conv.Files))
		for _, f := range conv.Files {
			files = append(files, models.OrderFile{
				FileID:     f.FileID,
				FileType:   models.FileKind(f.FileType),
				FileName:   f.FileName,
				UploadedBy: user.ID,
			})
		}
		res, err := a.market.SubmitRequest(ctx, service.RequestInput{
			BuyerID:      user.ID,
			SellerID:     conv.Listing.SellerID,
			ServiceID:    conv.Listing.ServiceID,
			NetAmount:    conv.Listing.NetPrice,
			Requirements: conv.Requirements,
			Files:        files,
		})
		if err != nil {
			return err
		}

		seller, err := a.market.UserByID(ctx, conv.Listing.SellerID)
		if err == nil {
			orderData := strconv.FormatInt(res.OrderID, 10)
			requirements := strings.Join(conv.Requirements, "\n")
			if requirements == "" {
				requirements = "No specific requirements provided."
			}
			sellerText := fmt.Sprintf(`🔔 *New Service Request!*

📦 Service: %s
👤 Buyer: %s
💰 Amount: %s
🆔 Order: #%d

📋 *Buyer Requirements:*
%s

📎 Files attached: %d

Review the request and send a custom quote, or decline:`,
				conv.Listing.Title, user.Name,
				pricing.USD(res.TotalAmount), res.OrderID,
				requirements, len(conv.Files))
			sellerMarkup := keyboard.InlineButtonsRows(
				[]keyboard.InlineBtn{{Text: "💰 Send Custom Quote", Unique: cbSendQuote, Data: orderData}},
				[]keyboard.InlineBtn{{Text: "💬 Message Buyer", Unique: cbMessageBuyer, Data: orderData}},
				[]keyboard.InlineBtn{{Text: "❌ Decline Request", Unique: cbDeclineRequest, Data: orderData}},
			)
			for _, f := range conv.Files {
				a.forwardFile(c.Bot(), seller.TelegramID, f, res.OrderID, user.Name)
			}
			a.notify(c.Bot(), seller.TelegramID, sellerText, sellerMarkup)
		}

		buyerText := fmt.Sprintf(`✅ *Request Sent!*

📦 Service: %s
👤 Seller: %s
🆔 Order: #%d
🔖 Ref: %s

The seller will review your requirements and respond with a quote or accept your order. You'll be notified here.`,
			conv.Listing.Title, conv.Listing.SellerName, res.OrderID, res.TransactionID)
		if err := tghelpers.EditOrSendMD(c, buyerText, backToMenuMarkup()); err != nil {
			return err
		}
		a.sessions.Delete(ctx, userID)
		return nil
	})
}

func (a *App) cbMyOrders(c tele.Context) error {
	user, err := a.requireUser(c)
	if err != nil || user == nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	orders, err := a.market.BuyerOrders(ctx, user.ID)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔍 Browse Services", Unique: cbMenuBrowse}},
			[]keyboard.InlineBtn{{Text: "🏠 Back to Menu", Unique: cbBackToMenu}},
		)
		return tghelpers.EditOrSendMD(c, "📋 *My Orders*\n\nYou haven't placed any orders yet.\n\nBrowse services to get started!", markup)
	}

	var b strings.Builder
	b.WriteString("📋 *My Orders*\n\n")
	for i, o := range orders {
		title := fmt.Sprintf("Service #%d", o.ServiceID)
		if listing, err := a.market.Listing(ctx, o.ServiceID); err == nil {
			title = listing.Title
		}
		amount := o.TotalAmount
		if o.CustomPrice.Valid && o.CustomPrice.Float64 > 0 {
			amount = pricing.Total(o.CustomPrice.Float64)
		}
		fmt.Fprintf(&b, "%d. %s *%s*\n", i+1, orderStatusEmoji(o.Status), title)
		fmt.Fprintf(&b, "   🆔 #%d • 💰 %s\n", o.ID, pricing.USD(amount))
		fmt.Fprintf(&b, "   📅 %s • %s\n\n", formatDate(o.CreatedAt), statusLabel(o.Status))
	}
	return tghelpers.EditOrSendMD(c, b.String(), backToMenuMarkup())
}

func (a *App) handleMyOrdersCommand(c tele.Context) error {
	return a.cbMyOrders(c)
}
