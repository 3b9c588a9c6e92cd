package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/xiniluca/skillswap/core/telegram/format"
	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/pricing"
)

// mdSafe escapes user-supplied text before it is interpolated into a
// Markdown message, so a name like "a*b" cannot break the parse mode.
func mdSafe(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}

// Callback keys. Telebot encodes buttons as \f<unique>|<payload>; the payload
// carries the target service/order id where one is needed.
const (
	cbMenuBrowse     = "menu_browse"
	cbMenuSearch     = "menu_search"
	cbMenuMyOrders   = "menu_my_orders"
	cbMenuMyServices = "menu_my_services"
	cbMenuSales      = "menu_sales"
	cbMenuAddService = "menu_add_service"
	cbMenuProfile    = "menu_profile"
	cbMenuAbout      = "menu_about"
	cbMenuTopSellers = "menu_top_sellers"
	cbMenuPromote    = "menu_promote"
	cbMenuHelp       = "menu_help"
	cbBackToMenu     = "back_to_menu"

	cbRole           = "role"
	cbBuy            = "buy"
	cbReqText        = "req_text"
	cbReqDocs        = "req_docs"
	cbSendRequest    = "send_request"
	cbSendQuote      = "send_quote"
	cbAcceptQuote    = "accept_quote"
	cbDeclineQuote   = "decline_quote"
	cbDeclineRequest = "decline_request"
	cbMessageBuyer   = "message_buyer"
	cbMessageSeller  = "message_seller"
	cbRate           = "rate"
	cbPromoteService = "promote_service"
)

const welcomeNewUser = "Welcome to SkillSwap! 🎉\n\nLet's get you registered. First, what's your name?"

const restartHint = "Sorry, something went wrong. Please try /start again."

func helpText(supportHandle string) string {
	return fmt.Sprintf(`🤖 *SkillSwap Bot Commands*

📝 *General:*
/start - Register or welcome back
/help - Show this help message
/profile - View your profile

🔍 *Browse Services:*
/search [keyword] - Search for services
/browse - Browse all services

💼 *For Sellers:*
/addservice - Add a new service
/myservices - View your services
/promote - Promote your services (💰 $1.99/month)

⭐ *Reviews:*
Rate services after purchase (1-5 stars)

💰 *Payments:*
All payments processed securely via our payment system
Sellers receive 85%% of the final price

Need help? Contact %s`, supportHandle)
}

func helpMenuText(supportHandle string) string {
	return fmt.Sprintf(`🤖 *SkillSwap Help*

*🛒 For Buyers:*
• Browse or search services
• Share requirements & documents
• Get custom quotes
• Pay securely
• Receive completed work
• Rate sellers

*💼 For Sellers:*
• Add your services
• Receive requests with files
• Create custom quotes
• Get paid after delivery
• Build your reputation

*💰 How It Works:*
1. Buyer selects service & shares requirements
2. Seller reviews & sends custom quote
3. Buyer accepts & pays (seller gets 85%%)
4. Seller delivers work via chat
5. Buyer rates the experience

*📁 File Sharing:*
• Upload documents, images, videos
• Share requirements easily
• Receive completed work directly

Need help? Contact %s`, supportHandle)
}

const aboutText = `🚀 *Welcome to SkillSwap!*

Turn your 10-minute skill into real cash inside Telegram.

*Got something you're good at?*
✅ Fix grammar
✅ Design a Canva post
✅ Explain crypto basics
✅ Debug a spreadsheet
✅ Translate a paragraph
✅ Give fitness tips

You can sell it. Today. For real $$$.

💡 *How it works:*
*SELL:* Add service → describe your micro-skill (under 15 mins), set your price
*BUY:* Browse gigs → pay securely → get your result in-chat
*EARN:* Every time someone buys your skill, you get paid (minus a small 15% service fee)

We handle the payment link. You deliver the value. It's that simple.

🌟 *Why join?*
• No sign-ups — just Telegram
• Get paid in dollars — fast & easy
• Top sellers get featured (promote your gig for just $1.99/month!)
• Build your reputation with star ratings ⭐⭐⭐⭐⭐

✨ Your skill has value. Even if it feels "small" — someone out there needs it right now.

👉 Ready to earn? Add your first service or browse what's live today!

*SkillSwap — where tiny talents turn into real income.* 💰`

func profileText(u *models.User, supportHandle string) string {
	username := u.Username
	if username == "" {
		username = "Not set"
	}
	return fmt.Sprintf(`👤 *Your Profile*

📝 Name: %s
🆔 Username: %s
🎭 Role: %s
📅 Joined: %s

🔄 Want to change your role or update info? Contact %s`,
		mdSafe(u.Name), mdSafe(username), u.Role, u.CreatedAt.Format("2006-01-02"), supportHandle)
}

func mainMenuText(u *models.User) string {
	return fmt.Sprintf("Welcome back, %s! 👋\n\n🎯 SkillSwap Dashboard\n\nRole: %s\nWhat would you like to do today?", u.Name, u.Role)
}

const searchPrompt = "🔎 *Search Services*\n\nWhat service are you looking for?\n\nType keywords like:\n• \"web design\"\n• \"logo creation\"\n• \"content writing\"\n• \"data entry\"\n\nSend your search term now:"

const serviceTitlePrompt = "💼 Let's add your service!\n\n📝 First, what's the title of your service?\n(Keep it short and descriptive)"

const requirementsTextPrompt = `📝 *Describe Your Requirements*

Please type your detailed requirements:

• What exactly do you need?
• Any specific instructions?
• Preferred timeline?
• Special requests?

Type your message now:`

const requirementsDocsPrompt = `📎 *Upload Documents*

Send any files, images, or documents related to your project:

• Reference materials
• Existing files
• Examples
• Specifications

Send your files now (one by one):`

func quotePrompt(orderID int64) string {
	return fmt.Sprintf(`💰 *Create Custom Quote*

Please provide:

1. *Your price* (in USD)
2. *Brief explanation* of what's included
3. *Estimated delivery time*

Format: [Price] [Description]
Example: 25.00 Logo design with 3 revisions, delivered in 2 days

Order #%d. Type your quote now:`, orderID)
}

func messageBuyerPrompt(orderID int64) string {
	return fmt.Sprintf(`💬 *Message Buyer*

Send a message to the buyer about Order #%d.

You can:
• Ask for clarification
• Request additional information
• Discuss project details

Type your message now:`, orderID)
}

func messageSellerPrompt(orderID int64) string {
	return fmt.Sprintf(`💬 *Message Seller*

Send a message to the seller about Order #%d.

You can:
• Ask questions about the quote
• Provide additional details
• Discuss timeline

Type your message now:`, orderID)
}

// renderListings formats a numbered list of listings the way search and
// browse screens show them.
func renderListings(title string, listings []models.ServiceListing) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, l := range listings {
		rating := "⭐ New"
		if l.AvgRating > 0 {
			rating = fmt.Sprintf("⭐ %.1f", l.AvgRating)
		}
		promoted := ""
		if l.IsCurrentlyPromoted {
			promoted = "🌟 "
		}
		fmt.Fprintf(&b, "%d. %s*%s*\n", i+1, promoted, mdSafe(l.Title))
		fmt.Fprintf(&b, "👤 %s %s\n", mdSafe(l.SellerName), rating)
		fmt.Fprintf(&b, "📝 %s\n", mdSafe(l.Description))
		fmt.Fprintf(&b, "💰 %s • ⏱️ %s\n\n", pricing.USD(pricing.Total(l.NetPrice)), l.DeliveryTime)
	}
	return b.String()
}

func orderStatusEmoji(status models.OrderStatus) string {
	switch status {
	case models.StatusRequestSent:
		return "📤"
	case models.StatusQuoteSent:
		return "💰"
	case models.StatusQuoteAccepted:
		return "✅"
	case models.StatusQuoteDeclined, models.StatusDeclined:
		return "❌"
	case models.StatusCompleted:
		return "🎉"
	case models.StatusCancelled:
		return "🚫"
	default:
		return "📋"
	}
}

func statusLabel(status models.OrderStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
