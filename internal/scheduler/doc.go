// Package scheduler запускает chains по расписанию.
//
// Расписание — cron-выражение или интервал в секундах, хранится в БД.
// Планировщик тикает с фиксированным периодом, выбирает due-расписания
// и выполняет их chains через executor.ChainExecutor.
package scheduler
