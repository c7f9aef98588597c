package handlers

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/pkazakov/assistbot/internal/command"
	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/places"
)

func btn(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func menuButton() models.InlineKeyboardButton {
	return btn("🏠 Menu", command.FormatMenu(command.SectionMain))
}

func cancelKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("✖️ Cancel", command.FormatCancel())},
	}}
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("📝 Tasks", command.FormatMenu(command.SectionTasks)), btn("🎂 Birthdays", command.FormatMenu(command.SectionBirthdays))},
		{btn("🌤 Weather", command.FormatMenu(command.SectionWeather)), btn("💱 Currency", command.FormatMenu(command.SectionCurrency))},
		{btn("📍 Places", command.FormatMenu(command.SectionPlaces)), btn("⚙️ Settings", command.FormatMenu(command.SectionSettings))},
	}}
}

// paginationRow builds prev / indicator / next buttons. The indicator is a
// no-op so tapping it only answers the callback.
func paginationRow(page, totalPages int, pageData func(int) string, noopData string) []models.InlineKeyboardButton {
	row := []models.InlineKeyboardButton{}
	if page > 1 {
		row = append(row, btn("⬅️", pageData(page-1)))
	}
	row = append(row, btn(fmt.Sprintf("%d/%d", page, totalPages), noopData))
	if page < totalPages {
		row = append(row, btn("➡️", pageData(page+1)))
	}
	return row
}

// taskListKeyboard lists the page's tasks as buttons leading to their
// action views.
func taskListKeyboard(pageTasks []database.Task, page, totalPages int) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(pageTasks)+3)
	for _, task := range pageTasks {
		rows = append(rows, []models.InlineKeyboardButton{
			btn(truncateLabel(task.Title, 40), command.FormatTaskActions(task.ID)),
		})
	}

	if totalPages > 1 {
		rows = append(rows, paginationRow(page, totalPages, command.FormatTaskPage, command.FormatTaskPageNoop()))
	}

	rows = append(rows,
		[]models.InlineKeyboardButton{btn("➕ Add", command.FormatTaskAdd()), btn("🗑 Delete", command.FormatTaskDelete())},
		[]models.InlineKeyboardButton{menuButton()},
	)

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func taskActionsKeyboard(taskID uint) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("✅ Complete", command.FormatTaskComplete(taskID)), btn("⏰ Postpone", command.FormatTaskPostponeMenu(taskID))},
		{btn("⬅️ Back", command.FormatMenu(command.SectionTasks))},
	}}
}

// postponeOptions are the offsets offered by the postpone menu, in minutes.
var postponeOptions = []struct {
	label   string
	minutes int
}{
	{"5 min", 5},
	{"10 min", 10},
	{"30 min", 30},
	{"1 hour", 60},
	{"3 hours", 180},
	{"1 day", 1440},
}

func postponeKeyboard(taskID uint) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(postponeOptions)/2+1)
	for i := 0; i < len(postponeOptions); i += 2 {
		row := []models.InlineKeyboardButton{
			btn(postponeOptions[i].label, command.FormatTaskPostpone(taskID, postponeOptions[i].minutes)),
		}
		if i+1 < len(postponeOptions) {
			row = append(row, btn(postponeOptions[i+1].label, command.FormatTaskPostpone(taskID, postponeOptions[i+1].minutes)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []models.InlineKeyboardButton{btn("⬅️ Back", command.FormatTaskActions(taskID))})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// taskDeleteKeyboard lists the page's tasks as delete targets.
func taskDeleteKeyboard(pageTasks []database.Task) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(pageTasks)+1)
	for _, task := range pageTasks {
		rows = append(rows, []models.InlineKeyboardButton{
			btn("🗑 "+truncateLabel(task.Title, 38), command.FormatTaskDeleteConfirm(task.ID)),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{btn("⬅️ Back", command.FormatMenu(command.SectionTasks))})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func birthdayListKeyboard(page, totalPages int) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{}
	if totalPages > 1 {
		rows = append(rows, paginationRow(page, totalPages, command.FormatBirthdayPage, command.FormatBirthdayPageNoop()))
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{btn("➕ Add", command.FormatBirthdayAdd()), btn("🗑 Delete", command.FormatBirthdayDelete())},
		[]models.InlineKeyboardButton{menuButton()},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// birthdayDeleteKeyboard lists the page's birthdays as delete targets,
// keyed by name since names are unique per user.
func birthdayDeleteKeyboard(pageBirthdays []database.Birthday) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(pageBirthdays)+1)
	for _, b := range pageBirthdays {
		rows = append(rows, []models.InlineKeyboardButton{
			btn("🗑 "+truncateLabel(b.Name, 38), command.FormatBirthdayDeleteConfirm(b.Name)),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{btn("⬅️ Back", command.FormatMenu(command.SectionBirthdays))})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func weatherKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("📅 Forecast", command.FormatWeatherForecast()), btn("🏙 Change city", command.FormatSettingsChangeCity())},
		{menuButton()},
	}}
}

func currencyKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("🔄 Convert", command.FormatCurrencyConvert())},
		{menuButton()},
	}}
}

func settingsKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{btn("🏙 Change city", command.FormatSettingsChangeCity())},
		{menuButton()},
	}}
}

// placeTypesKeyboard offers the supported categories for the given origin.
func placeTypesKeyboard(lat, lon float64) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(places.Types())+1)
	for _, placeType := range places.Types() {
		rows = append(rows, []models.InlineKeyboardButton{
			btn(placeTypeTitle(placeType), command.FormatPlacesSearch(placeType, lat, lon)),
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{menuButton()})

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func placesPageKeyboard(placeType string, lat, lon float64, page, totalPages int) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{}
	if totalPages > 1 {
		rows = append(rows, paginationRow(page, totalPages,
			func(p int) string { return command.FormatPlacesPage(placeType, lat, lon, p) },
			command.FormatPlacesPageNoop()))
	}
	rows = append(rows, []models.InlineKeyboardButton{
		btn("⬅️ Categories", command.FormatPlacesTypes(lat, lon)),
		menuButton(),
	})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
