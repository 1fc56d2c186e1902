package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"rent-reclaim-bot/internal/partner"
	"rent-reclaim-bot/internal/wallet"
)

// Reply keyboard labels.
const (
	ButtonCheckWallet = "🔎 Check Wallet"
	ButtonClaimSOL    = "🔗 Claim SOL"
)

// Commands.
const (
	CommandStart        = "start"
	CommandPartnerStats = "partner_stats"
)

const (
	textAskAddress     = "Please send me your Solana wallet address to check."
	textClaimIntro     = "To securely reclaim your funds, please proceed to our official platform:"
	textClaimButton    = "🔒 Reclaim Your SOL on SolRebound.com"
	textClaimNow       = "🔗 Claim Now"
	textAdminOnly      = "🚫 This command is reserved for the channel owner."
	textInvalidAddress = "🚫 The wallet address you provided is invalid. Please double-check it and try again."
	textChecking       = "🔍 Checking Solana wallet... this may take a few moments."
	textClean          = "✅ Your wallet is clean! We found no empty accounts to close."
	textNetworkError   = "An error occurred while connecting to the Solana network. Please try again later."
	textFallback       = "Please use the buttons below to interact with the bot."
	textNoReferralCode = "❌ Could not extract the referral code from the configured partner link."
	textInvalidCode    = "❌ Invalid referral code. Please check the configured partner link."
	textStatsError     = "❌ Could not fetch partner statistics. Please try again later."
)

func welcomeText(channel string) string {
	return fmt.Sprintf("👋 Welcome to the Solana Wallet Checker Bot by %s!\n\n"+
		"Find out how much SOL is locked in empty token accounts in your wallet.", channel)
}

func resultText(n int, est wallet.Estimate) string {
	return fmt.Sprintf("✅ Scan Complete!\n\n"+
		"📊 We found *%d* empty token accounts.\n\n"+
		"You will receive:\n"+
		"💰 *~%s SOL*\n"+
		"💵 _Equivalent to ~$%s_",
		n, est.SOLDisplay(), est.USDDisplay())
}

func statsText(s *partner.Stats) string {
	return fmt.Sprintf("📊 Partnership Dashboard:\n\n"+
		"👥 Total Users Referred: %d\n"+
		"🔄 Total Transactions: %d\n"+
		"💰 Total Earnings: %s SOL",
		s.UserCount, s.TransactionCount, formatSOL(s.TotalEarningsSOL))
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonCheckWallet)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonClaimSOL)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func linkKeyboard(text, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, url)),
	)
}

func formatSOL(v float64) string {
	return decimal.NewFromFloat(v).String()
}
