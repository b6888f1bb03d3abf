// Package nodes содержит реализации типов узлов flow.
//
// Каждый тип узла реализует интерфейс Executor и регистрируется
// в Registry. Стандартные типы:
//   - input   — точка входа данных
//   - output  — форматирование и публикация результата
//   - http    — запрос к внешнему API
//   - crawler — извлечение контента веб-страницы
//   - merger  — накопление входов в один агрегат
//   - llm     — генерация текста через LLM-провайдера
//
// Узлы не знают о структуре графа: вход им доставляет executor,
// состояние запуска живёт в engine.ExecutionContext.
package nodes
