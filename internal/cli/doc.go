// Package cli реализует инструмент командной строки Nodeflow.
//
// CLI — клиентская утилита для взаимодействия с Nodeflow API.
// Работает через HTTP, не импортирует внутренние пакеты сервера.
//
// Client инкапсулирует HTTP-запросы и разбор конвертов ответов
// (data/list/error). Output форматирует вывод: таблицы через
// text/tabwriter по умолчанию, JSON с флагом --json; данные идут
// в stdout, сообщения — в stderr, так что вывод дружит с pipe:
//
//	nodeflow chain list --json | jq .
//
// Cobra-команды организованы по ресурсам:
//   - chain: list, create, show, update, delete, run, export, import
//   - flow: list, import, show, delete, run
//   - schedule: list, create, show, update, delete, enable, disable
//
// Каждая группа создаётся фабричной функцией (NewChainCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
