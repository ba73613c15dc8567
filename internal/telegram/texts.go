package telegram

const (
	startText = "Привет! Я бот для расчёта суммы за обед из приложения Лимончелло.\n\n" +
		"Как это работает:\n" +
		"1️⃣ Заказ блюд ты делаешь внутри приложения (меню, корзина и общий заказ там).\n" +
		"2️⃣ В приложении указываешь свой Telegram @username или id — по нему мы тебя узнаём.\n" +
		"3️⃣ Когда общий заказ закрывается (по времени closeAt), я считаю, сколько именно ты должен:\n" +
		"   • твой личный заказ за сегодня\n" +
		"   • минус часть общей скидки\n" +
		"   • плюс твоя доля доставки.\n" +
		"4️⃣ После закрытия заказа я пришлю тебе сюда личное сообщение с точной суммой к оплате.\n\n" +
		"Ничего дополнительно нажимать не нужно — главное один раз написать мне /start,\n" +
		"а заказы продолжать делать в приложении."

	closeOrderText = "Пытаюсь разослать суммы за сегодняшний заказ."
)
