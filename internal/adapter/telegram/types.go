package telegram

// Update is an inbound event from the bot API webhook.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int         `json:"message_id"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Document  *Document   `json:"document,omitempty"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// PhotoSize is one resolution of an uploaded photo; the last element of
// Message.Photo is the largest.
type PhotoSize struct {
	FileID string `json:"file_id"`
}

// Document is an uploaded file attachment.
type Document struct {
	FileID string `json:"file_id"`
}

// Markup is a reply_markup payload. The concrete types below are the only
// implementations.
type Markup interface {
	markup()
}

// ReplyKeyboard shows text quick-reply buttons under the input field.
type ReplyKeyboard struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

func (ReplyKeyboard) markup() {}

// KeyboardButton is one quick-reply choice.
type KeyboardButton struct {
	Text string `json:"text"`
}

// InlineKeyboard attaches callback buttons to a message.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

func (InlineKeyboard) markup() {}

// InlineButton is one callback button.
type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// ReplyRows builds a single-column reply keyboard from choices.
func ReplyRows(choices ...string) ReplyKeyboard {
	rows := make([][]KeyboardButton, 0, len(choices))
	for _, choice := range choices {
		rows = append(rows, []KeyboardButton{{Text: choice}})
	}
	return ReplyKeyboard{Keyboard: rows, ResizeKeyboard: true}
}
