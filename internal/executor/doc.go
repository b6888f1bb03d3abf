// Package executor планирует выполнение flows и chains.
//
// Включает:
//   - flow.go  — FlowExecutor: конкурентный запуск корней одного flow
//     и доставка значений по рёбрам
//   - chain.go — ChainExecutor: строго последовательный запуск flows
//     в составе chain с пробросом результатов
//
// Структура графа и состояние запуска живут в пакете engine,
// логика типов узлов — в пакете nodes.
package executor
