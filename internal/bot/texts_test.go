package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiniluca/skillswap/internal/models"
	"github.com/xiniluca/skillswap/internal/session"

	tele "gopkg.in/telebot.v4"
)

func TestRenderListings(t *testing.T) {
	listings := []models.ServiceListing{
		{
			Service: models.Service{
				Title:        "Logo design",
				Description:  "Minimal logos in 24h",
				NetPrice:     10,
				DeliveryTime: "24 hours",
			},
			SellerName:          "Alice",
			AvgRating:           4.5,
			IsCurrentlyPromoted: true,
		},
		{
			Service: models.Service{
				Title:        "Proofreading",
				Description:  "Up to 1000 words",
				NetPrice:     5,
				DeliveryTime: "12 hours",
			},
			SellerName: "Bob",
		},
	}

	out := renderListings("📋 Available Services", listings)

	assert.Contains(t, out, "1. 🌟 *Logo design*")
	assert.Contains(t, out, "⭐ 4.5")
	// Buyer-facing price carries the commission markup.
	assert.Contains(t, out, "$11.50")
	// Unrated sellers show as new, not as zero stars.
	assert.Contains(t, out, "2. *Proofreading*")
	assert.Contains(t, out, "⭐ New")
	assert.Contains(t, out, "$5.75")
}

func TestRenderListingsEscapesUserText(t *testing.T) {
	listings := []models.ServiceListing{{
		Service:    models.Service{Title: "a*b", Description: "plain", NetPrice: 1, DeliveryTime: "1h"},
		SellerName: "Eve_",
	}}
	out := renderListings("title", listings)
	assert.NotContains(t, out, "*a*b*")
	assert.NotContains(t, out, "Eve_\n")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "request sent", statusLabel(models.StatusRequestSent))
	assert.Equal(t, "quote accepted", statusLabel(models.StatusQuoteAccepted))
	assert.Equal(t, "completed", statusLabel(models.StatusCompleted))
}

func TestOrderStatusEmoji(t *testing.T) {
	assert.Equal(t, "📤", orderStatusEmoji(models.StatusRequestSent))
	assert.Equal(t, "💰", orderStatusEmoji(models.StatusQuoteSent))
	assert.Equal(t, "❌", orderStatusEmoji(models.StatusDeclined))
	assert.Equal(t, "🎉", orderStatusEmoji(models.StatusCompleted))
	assert.Equal(t, "📋", orderStatusEmoji(models.OrderStatus("weird")))
}

func TestHelpTextMentionsSupportHandle(t *testing.T) {
	assert.Contains(t, helpText("@support"), "@support")
	assert.Contains(t, helpMenuText("@support"), "@support")
	assert.Contains(t, profileText(&models.User{
		Name:      "Alice",
		Role:      models.RoleBoth,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}, "@support"), "@support")
}

func TestProfileTextDefaultsUsername(t *testing.T) {
	out := profileText(&models.User{
		Name:      "Alice",
		Role:      models.RoleBuyer,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}, "@support")
	assert.Contains(t, out, "Not set")
	assert.Contains(t, out, "2026-03-01")
}

func TestRequirementsMarkup(t *testing.T) {
	markup := requirementsMarkup(42)
	require.Len(t, markup.InlineKeyboard, 3)

	assert.Equal(t, cbReqText, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "42", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, cbReqDocs, markup.InlineKeyboard[1][0].Unique)
	assert.Equal(t, cbSendRequest, markup.InlineKeyboard[2][0].Unique)
	assert.Equal(t, "42", markup.InlineKeyboard[2][0].Data)
}

func TestFileRef(t *testing.T) {
	ref, ok := fileRef(&tele.Message{Document: &tele.Document{
		File:     tele.File{FileID: "doc-1"},
		FileName: "brief.pdf",
	}})
	require.True(t, ok)
	assert.Equal(t, "doc-1", ref.FileID)
	assert.Equal(t, string(models.FileDocument), ref.FileType)
	assert.Equal(t, "brief.pdf", ref.FileName)

	// Photos carry no filename; a placeholder keeps captions readable.
	ref, ok = fileRef(&tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "ph-1"}}})
	require.True(t, ok)
	assert.Equal(t, string(models.FilePhoto), ref.FileType)
	assert.Equal(t, "image.jpg", ref.FileName)

	ref, ok = fileRef(&tele.Message{Video: &tele.Video{File: tele.File{FileID: "vid-1"}}})
	require.True(t, ok)
	assert.Equal(t, string(models.FileVideo), ref.FileType)
	assert.Equal(t, "video.mp4", ref.FileName)

	_, ok = fileRef(&tele.Message{Text: "just text"})
	assert.False(t, ok)
}

func TestCollectedSummary(t *testing.T) {
	conv := &session.Conversation{
		Requirements: []string{"📝 Need a red logo"},
		Files:        []session.FileRef{{Info: "📎 brief.pdf"}},
	}
	out := collectedSummary(conv)
	assert.Contains(t, out, "📝 Need a red logo")
	assert.Contains(t, out, "📎 brief.pdf")
	assert.Contains(t, out, "Add more or send your request")
}
