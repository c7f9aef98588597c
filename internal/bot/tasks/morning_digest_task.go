package tasks

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"

	"github.com/pkazakov/assistbot/internal/currency"
	"github.com/pkazakov/assistbot/internal/weather"
)

// newMorningDigestTask creates the job that sends the admin a daily summary
// of weather and exchange rates. The sent message is recorded so the nightly
// cleanup can delete it.
func newMorningDigestTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "morning_digest")

	return func(ctx context.Context) error {
		adminID := deps.Config.Telegram.AdminUserID
		now := deps.now()

		city := deps.Config.Weather.DefaultCity
		if settings, err := deps.Store.GetSettings(ctx, adminID); err != nil {
			log.WarnContext(ctx, "Failed to load admin settings, using default city", "error", err)
		} else if settings != nil && settings.City != "" {
			city = settings.City
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "🌅 Good morning! %s\n", now.Format("Monday, 02 January 2006"))

		// A failing provider degrades its section, not the whole digest.
		if cur, err := deps.Weather.CurrentWeather(ctx, city); err != nil {
			log.ErrorContext(ctx, "Failed to fetch weather for digest", "error", err, "city", city)
			sb.WriteString("\nWeather is unavailable right now.\n")
		} else {
			fmt.Fprintf(&sb, "\n%s %s: %s, %.1f°C (feels like %.1f°C), wind %.1f m/s\n",
				weather.IconEmoji(cur.Icon), cur.City, cur.Description, cur.Temp, cur.FeelsLike, cur.WindSpeed)
		}

		if rates, err := deps.Currency.Rates(ctx); err != nil {
			log.ErrorContext(ctx, "Failed to fetch rates for digest", "error", err)
			sb.WriteString("\nExchange rates are unavailable right now.\n")
		} else {
			sb.WriteString("\n💱 Exchange rates:\n")
			for _, rate := range currency.PriorityRates(rates) {
				fmt.Fprintf(&sb, "%s: %.2f ₽\n", rate.Code, rate.RUBPrice())
			}
		}

		msg, err := deps.Bot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: adminID,
			Text:   sb.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to send morning digest: %w", err)
		}

		if err := deps.Store.SaveDailyMessage(ctx, adminID, msg.ID); err != nil {
			return fmt.Errorf("failed to record digest message: %w", err)
		}

		log.InfoContext(ctx, "Morning digest sent", "chat_id", adminID, "message_id", msg.ID)
		return nil
	}
}
