package conversation

// Callback unique keys shared with the transport layer.
const (
	KeyStart  = "start"
	KeyTask   = "task"
	KeyCancel = "cancel"
	KeyBack   = "back"
)

// Payloads of the KeyCancel button.
const (
	CancelSupport = "support"
	CancelAnswer  = "answer"
)

// MenuSubmit is the reply-keyboard label that opens the task picker.
const MenuSubmit = "Отправить ответ"

const (
	textIntro      = "Привет!\nЯ - Advent Coding Bot 🤖\nЯ принимаю ответы на задачи челленджа."
	textIntroTasks = "\nЗадачи публикуются здесь: %s"
	textIntroTail  = "\nНажми на кнопку 'Начать', чтобы зарегистрироваться и принять участие ⬇️"
	labelStart     = "Начать"

	textNotRegistered     = "Похоже, ты ещё не зарегистрирован(а) для участия в Advent Coding. Только зарегистрированные участники могут отправлять ответы и запрашивать поддержку через бота. Нажми /start для регистрации"
	textNotRegisteredChat = " или напиши свой вопрос в %s"

	// TextPleaseWait is shown while registration is in progress.
	TextPleaseWait  = "Секунду..."
	textRegistered  = "Зарегистрировал, добро пожаловать! 🙌"
	textRefreshed   = "Нашел и обновил данные в базе 👌"
	textWelcomeMenu = "Теперь тебе доступно участие в челлендже. Чтобы отправить ответ на задачу, нажми 'Отправить ответ' в меню"

	textPicker  = "Сегодня я принимаю ответ на задачи от %d %s. На какую задачу хочешь ответить?"
	textNoTasks = "Сегодня задач нет, ответы принимаются в дни челленджа"
	textExpired = "Сегодня %d %s и ответ на задачу %s я уже принять не могу :("
	textLocked  = "Ответ на задачу %s уже был принят, повторно отправить или изменить ответ нельзя"
	labelBack   = "Назад"
	labelCancel = "Отмена ❌"

	textAnswerPrompt = "Напиши ответ на задачу %s"
	textAnswerSaved  = "Ответ сохранен ✅"
	textDayComplete  = "Ответы на обе задачи %d %s приняты 🎉 Возвращайся завтра за новыми задачами!"
	textFinalDay     = "Ответы на обе задачи приняты 🎉 Это был последний день Advent Coding, спасибо за участие! Итоги подведём в чате."

	textAnswerCancelled  = "Ввод отменён ✅"
	textSupportCancelled = "Запрос отменён ✅"

	textSupportPrompt = "Пожалуйста, опиши проблему или вопрос максимально подробно. Я передам всё организаторам, и они свяжутся с тобой в ближайшее время (убедись, пожалуйста, что твой аккаунт открыт и тебе можно написать)"
	textSupportSaved  = "Я сохранил обращение, организаторы свяжутся с тобой в ближайшее время!"

	textHint       = "Чтобы отправить ответ на одну из сегодняшних задач, нажми 'Отправить ответ' в меню"
	textEmptyInput = "Сообщение пустое, напиши текст ещё раз"

	textStats = "<b>Статистика</b>\nУчастников: %d\nОтветов за %d %s: задача 1: %d, задача 2: %d\nОбращений в поддержку: %d"

	defaultMonthLabel = "декабря"

	defaultFAQ = "<b>Частые вопросы</b>\n\n" +
		"<b>Как отправить ответ?</b>\nНажми 'Отправить ответ' в меню и выбери задачу.\n\n" +
		"<b>Можно ли изменить ответ?</b>\nНет, принимается только первый ответ на каждую задачу.\n\n" +
		"<b>До какого времени принимаются ответы?</b>\nДо конца дня публикации задачи по московскому времени.\n\n" +
		"<b>Что-то пошло не так?</b>\nНапиши /support и опиши проблему."
	defaultRules = "Правила Advent Coding:\n" +
		"1. Каждый день публикуются две задачи.\n" +
		"2. Ответ на задачу принимается только в день её публикации.\n" +
		"3. На каждую задачу можно ответить один раз.\n" +
		"4. Будь вежлив(а) в чате и в обращениях в поддержку."
)

// Texts the transport layer shows outside the conversation flow.
const (
	TextApology     = "Простите, произошла ошибка, уже разбираюсь."
	TextTextOnly    = "Я понимаю только текстовые сообщения"
	TextRateLimited = "Слишком много сообщений, подожди немного"
	TextAdminOnly   = "Команда доступна только организаторам"
	TextUnavailable = "Действие недоступно"
)
