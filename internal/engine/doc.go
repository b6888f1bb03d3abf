// Package engine содержит ядро выполнения flow.
//
// Включает:
//   - graph.go   — построение и валидация графа (корни, листья, смежность)
//   - context.go — ExecutionContext: статусы узлов, выходы, аккумуляторы
//   - results.go — сбор нормализованных результатов запуска
//   - refs.go    — подстановка плейсхолдеров ${flowId.result}
//
// Engine отвечает за понимание структуры flow и хранение состояния
// одного запуска; само выполнение узлов живёт в пакетах nodes и executor.
package engine
