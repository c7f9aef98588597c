package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/currency"
	"github.com/pkazakov/assistbot/internal/session"
)

// showRates renders today's full rate table, well-known currencies first.
func (f flows) showRates(ctx context.Context, b *bot.Bot, chatID int64, messageID int) {
	log := f.deps.Logger.With("handler", "currency")

	rates, err := f.deps.Currency.Rates(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch rates", "error", err)
		if _, err := f.render(ctx, b, chatID, messageID,
			"⚠️ Exchange rates are unavailable right now, try again later.", currencyKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to render rates error", "error", err, "chat_id", chatID)
		}
		return
	}

	var sb strings.Builder
	sb.WriteString("💱 Exchange rates (₽ per unit):\n\n")
	for _, rate := range currency.PriorityRates(rates) {
		fmt.Fprintf(&sb, "%s %s: %.2f ₽\n", rate.Code, rate.Name, rate.RUBPrice())
	}
	if others := currency.OtherRates(rates); len(others) > 0 {
		sb.WriteString("\nOther currencies:\n")
		for _, rate := range others {
			fmt.Fprintf(&sb, "%s %s: %.2f ₽\n", rate.Code, rate.Name, rate.RUBPrice())
		}
	}

	if _, err := f.render(ctx, b, chatID, messageID, sb.String(), currencyKeyboard()); err != nil {
		log.ErrorContext(ctx, "Failed to render rates", "error", err, "chat_id", chatID)
	}
}

// beginConversion starts the one-step conversion flow.
func (f flows) beginConversion(ctx context.Context, b *bot.Bot, chatID, userID int64, messageID int) {
	promptID, err := f.render(ctx, b, chatID, messageID,
		"🔄 Send: AMOUNT FROM TO, e.g. 100 USD RUB", cancelKeyboard())
	if err != nil {
		f.deps.Logger.ErrorContext(ctx, "Failed to render conversion prompt", "error", err, "chat_id", chatID)
		return
	}

	f.deps.Sessions.Begin(userID, session.WaitingConversion, session.Data{PromptMessageID: promptID})
}

func (f flows) handleConversion(ctx context.Context, b *bot.Bot, chatID, userID int64, sess session.Session, input string) {
	log := f.deps.Logger.With("handler", "currency")

	amount, from, to, err := parseConversion(input)
	if err != nil {
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID, "⚠️ "+err.Error())
		return
	}

	result, err := f.deps.Currency.Convert(ctx, amount, from, to)
	if err != nil {
		if errors.Is(err, currency.ErrUnknownCurrency) {
			f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
				"⚠️ "+err.Error()+". Use ISO codes like USD, EUR, RUB.")
			return
		}
		log.ErrorContext(ctx, "Conversion failed", "error", err)
		f.reprompt(ctx, b, chatID, sess.Data.PromptMessageID,
			"⚠️ Exchange rates are unavailable right now, try again later.")
		return
	}

	f.deps.Sessions.Clear(userID)

	text := fmt.Sprintf("💱 %.2f %s = %.2f %s", amount, from, result, to)
	if _, err := f.render(ctx, b, chatID, sess.Data.PromptMessageID, text, currencyKeyboard()); err != nil {
		log.ErrorContext(ctx, "Failed to render conversion result", "error", err, "chat_id", chatID)
	}
}
